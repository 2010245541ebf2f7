package handler

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/foodies/models"
	"github.com/valyala/fasthttp"
)

// formImage reads the uploaded image field. A missing file yields a nil image
// so the validator can reject it like any other missing field.
func formImage(c *fiber.Ctx, field string) (*models.Image, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading form file: %w", err)
	}

	blobFile, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening the file: %w", err)
	}
	defer blobFile.Close()

	data, err := io.ReadAll(blobFile)
	if err != nil {
		return nil, fmt.Errorf("reading the file: %w", err)
	}

	return &models.Image{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
