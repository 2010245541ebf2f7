package submission

import (
	"strings"

	"github.com/krishkalaria12/foodies/models"
)

// Form field names of the share form.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldTitle        = "title"
	FieldSummary      = "summary"
	FieldInstructions = "instructions"
	FieldImage        = "image"
)

// Payload is one submission attempt exactly as the user entered it.
type Payload struct {
	CreatorName  string
	CreatorEmail string
	Title        string
	Summary      string
	Instructions string
	Image        *models.Image
}

// FromForm builds a payload from the submitted text fields and the uploaded
// image, which may be nil.
func FromForm(fields map[string]string, image *models.Image) Payload {
	return Payload{
		CreatorName:  fields[FieldName],
		CreatorEmail: fields[FieldEmail],
		Title:        fields[FieldTitle],
		Summary:      fields[FieldSummary],
		Instructions: fields[FieldInstructions],
		Image:        image,
	}
}

func (p Payload) meal(imagePath string) *models.Meal {
	return &models.Meal{
		Title:        strings.TrimSpace(p.Title),
		Summary:      strings.TrimSpace(p.Summary),
		Instructions: strings.TrimSpace(p.Instructions),
		Image:        imagePath,
		Creator:      strings.TrimSpace(p.CreatorName),
		CreatorEmail: strings.TrimSpace(p.CreatorEmail),
	}
}
