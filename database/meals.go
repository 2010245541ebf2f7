package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/krishkalaria12/foodies/models"
	"github.com/krishkalaria12/foodies/slug"
	"gorm.io/gorm"
)

const maxSlugAttempts = 5

var ErrMealNotFound = errors.New("meal not found")

// MealStore persists meal records keyed by slug.
type MealStore struct {
	db *gorm.DB
}

func NewMealStore(db *gorm.DB) *MealStore {
	return &MealStore{db: db}
}

// Save inserts meal and fills in its ID and Slug. The slug comes from the
// title; a random suffix is added while the plain one is taken.
func (s *MealStore) Save(ctx context.Context, meal *models.Meal) error {
	db := s.db.WithContext(ctx)
	base := slug.Make(meal.Title)

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = base + "-" + shortSuffix()
		}

		taken, err := s.slugTaken(db, candidate)
		if err != nil {
			return err
		}
		if taken {
			continue
		}

		meal.ID = 0
		meal.Slug = candidate
		err = db.Create(meal).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race for the same slug
			continue
		}
		if err != nil {
			return fmt.Errorf("insert meal: %w", err)
		}
		return nil
	}

	meal.Slug = ""
	return fmt.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
}

// List returns every meal, newest first.
func (s *MealStore) List(ctx context.Context) ([]models.Meal, error) {
	meals := []models.Meal{}
	if err := s.db.WithContext(ctx).Order("id desc").Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return meals, nil
}

func (s *MealStore) GetBySlug(ctx context.Context, mealSlug string) (*models.Meal, error) {
	var meal models.Meal

	result := s.db.WithContext(ctx).Where("slug = ?", mealSlug).First(&meal)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, result.Error
	}

	return &meal, nil
}

func (s *MealStore) slugTaken(db *gorm.DB, candidate string) (bool, error) {
	var count int64
	if err := db.Model(&models.Meal{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return count > 0, nil
}

func shortSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
