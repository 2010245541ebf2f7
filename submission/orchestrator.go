// Package submission turns a shared meal form into a stored meal: it
// validates the fields, stores the image, saves the record, refreshes the
// listing cache and tells the caller where to go next.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/krishkalaria12/foodies/cache"
	"github.com/krishkalaria12/foodies/models"
)

const DefaultListingRoute = "/meals"

type MediaPersister interface {
	Store(ctx context.Context, img *models.Image) (string, error)
	Remove(ctx context.Context, path string) error
}

type RecordStore interface {
	// Save assigns the meal's ID and Slug.
	Save(ctx context.Context, meal *models.Meal) error
}

type CacheInvalidator interface {
	Invalidate(path string, scope cache.Scope) (int, error)
}

type State int

const (
	Received State = iota
	Validating
	Invalid
	PersistingMedia
	PersistingRecord
	Invalidating
	Completed
	Failed
)

var stateNames = [...]string{
	Received:         "received",
	Validating:       "validating",
	Invalid:          "invalid",
	PersistingMedia:  "persisting-media",
	PersistingRecord: "persisting-record",
	Invalidating:     "invalidating",
	Completed:        "completed",
	Failed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Result of a completed submission. Redirect is the route the user should
// be sent to.
type Result struct {
	Meal     *models.Meal
	Redirect string
}

type Service struct {
	media   MediaPersister
	records RecordStore
	cache   CacheInvalidator

	listingRoute string
	scope        cache.Scope
	observe      func(State)
	metrics      *metrics
}

type Option func(*Service)

// WithListingRoute sets the route that is invalidated and redirected to.
func WithListingRoute(route string) Option {
	return func(s *Service) { s.listingRoute = route }
}

func WithScope(scope cache.Scope) Option {
	return func(s *Service) { s.scope = scope }
}

// WithObserver registers fn to be called on every state transition.
func WithObserver(fn func(State)) Option {
	return func(s *Service) { s.observe = fn }
}

func NewService(media MediaPersister, records RecordStore, invalidator CacheInvalidator, opts ...Option) *Service {
	s := &Service{
		media:        media,
		records:      records,
		cache:        invalidator,
		listingRoute: DefaultListingRoute,
		scope:        cache.PageOnly,
		metrics:      newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one submission attempt. A *ValidationError means nothing was
// written. A *StorageError or *PersistenceError means the attempt failed;
// in the latter case the stored image has already been removed again.
//
// Cancelling ctx only has an effect before the image is stored.
func (s *Service) Submit(ctx context.Context, p Payload) (*Result, error) {
	s.enter(Received)
	s.enter(Validating)

	if err := Validate(p); err != nil {
		s.enter(Invalid)
		s.metrics.outcome(ctx, outcomeInvalid)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.enter(Failed)
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	s.enter(PersistingMedia)
	imagePath, err := s.media.Store(ctx, p.Image)
	if err != nil {
		s.enter(Failed)
		s.metrics.outcome(ctx, outcomeStorageError)
		return nil, &StorageError{Err: err}
	}

	s.enter(PersistingRecord)
	meal := p.meal(imagePath)
	if err := s.records.Save(ctx, meal); err != nil {
		s.enter(Failed)
		s.metrics.outcome(ctx, outcomePersistenceError)

		if rmErr := s.media.Remove(ctx, imagePath); rmErr != nil {
			log.Printf("submission: orphaned image %s: %v", imagePath, rmErr)
			err = errors.Join(err, fmt.Errorf("remove image: %w", rmErr))
		}
		return nil, &PersistenceError{ImagePath: imagePath, Err: err}
	}

	s.enter(Invalidating)
	if _, err := s.cache.Invalidate(s.listingRoute, s.scope); err != nil {
		// The meal is saved; a stale listing lasts at most one cache TTL.
		log.Printf("submission: invalidate %s (%s): %v", s.listingRoute, s.scope, err)
		s.metrics.invalidationFailed(ctx)
	}

	s.enter(Completed)
	s.metrics.outcome(ctx, outcomeCompleted)
	return &Result{Meal: meal, Redirect: s.listingRoute}, nil
}

func (s *Service) enter(state State) {
	if s.observe != nil {
		s.observe(state)
	}
}
