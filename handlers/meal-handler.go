package handler

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/foodies/database"
	"github.com/krishkalaria12/foodies/models"
	"github.com/krishkalaria12/foodies/submission"
	"github.com/microcosm-cc/bluemonday"
)

type Submitter interface {
	Submit(ctx context.Context, p submission.Payload) (*submission.Result, error)
}

type MealReader interface {
	List(ctx context.Context) ([]models.Meal, error)
	GetBySlug(ctx context.Context, slug string) (*models.Meal, error)
}

type MealHandler struct {
	submitter Submitter
	meals     MealReader
	policy    *bluemonday.Policy
}

func NewMealHandler(submitter Submitter, meals MealReader) *MealHandler {
	return &MealHandler{
		submitter: submitter,
		meals:     meals,
		policy:    bluemonday.UGCPolicy(),
	}
}

// ShareMeal handles the share form. Success redirects to the listing.
func (h *MealHandler) ShareMeal(c *fiber.Ctx) error {
	image, err := formImage(c, submission.FieldImage)
	if err != nil {
		log.Printf("share meal: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Error reading the image",
			"data":    nil,
		})
	}

	fields := make(map[string]string, 5)
	for _, name := range []string{
		submission.FieldName,
		submission.FieldEmail,
		submission.FieldTitle,
		submission.FieldSummary,
		submission.FieldInstructions,
	} {
		fields[name] = c.FormValue(name)
	}

	result, err := h.submitter.Submit(c.UserContext(), submission.FromForm(fields, image))
	if err != nil {
		var verr *submission.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"status":  "error",
				"message": verr.Message,
				"data":    nil,
			})
		}
		return err
	}

	return c.Redirect(result.Redirect, fiber.StatusSeeOther)
}

func (h *MealHandler) ListMeals(c *fiber.Ctx) error {
	meals, err := h.meals.List(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Meals found",
		"data":    meals,
	})
}

func (h *MealHandler) GetMeal(c *fiber.Ctx) error {
	type MealResponse struct {
		models.Meal
		InstructionsHTML string `json:"instructions_html"`
	}

	meal, err := h.meals.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		if errors.Is(err, database.ErrMealNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Meal not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Meal found",
		"data": MealResponse{
			Meal:             *meal,
			InstructionsHTML: h.instructionsHTML(meal.Instructions),
		},
	})
}

func (h *MealHandler) instructionsHTML(instructions string) string {
	html := strings.ReplaceAll(instructions, "\r\n", "\n")
	html = strings.ReplaceAll(html, "\n", "<br />")
	return h.policy.Sanitize(html)
}
