// Package picker holds the preview state of the share form's image input.
// It backs the client-side preview shown next to the file field before the
// form is posted to /meals/share; nothing on the server imports it.
//
// Selecting a file starts an asynchronous decode into a data URL. Each
// selection bumps a generation counter and a decode only lands if its
// generation is still the latest one, so the last selection wins even when
// an older decode finishes after it.
package picker

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

var ErrUnsupportedType = errors.New("only PNG and JPEG images can be picked")

type State int

const (
	Unselected State = iota
	Decoding
	Selected
)

func (s State) String() string {
	switch s {
	case Unselected:
		return "unselected"
	case Decoding:
		return "decoding"
	case Selected:
		return "selected"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Snapshot is what the form renders. Preview is empty unless State is
// Selected; Err is set when the latest decode failed.
type Snapshot struct {
	State      State
	Preview    string
	Err        error
	Generation uint64
}

// DecodeFunc turns file content into something an <img> can display.
type DecodeFunc func(ctx context.Context, file io.Reader) (string, error)

type Selector struct {
	mu       sync.Mutex
	current  Snapshot
	decode   DecodeFunc
	onChange func(Snapshot)

	// notifyMu orders onChange calls.
	notifyMu sync.Mutex
	// applied runs between applying a decode result and notifying; tests only.
	applied func(Snapshot)
}

type Option func(*Selector)

func WithDecoder(fn DecodeFunc) Option {
	return func(s *Selector) { s.decode = fn }
}

// OnChange registers fn to receive applied snapshots, one call at a time and
// in order. A snapshot that was already replaced when its turn comes is
// skipped, so the last call always matches Snapshot. fn must not call Select
// or Clear.
func OnChange(fn func(Snapshot)) Option {
	return func(s *Selector) { s.onChange = fn }
}

func New(opts ...Option) *Selector {
	s := &Selector{decode: DataURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Selector) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Select starts decoding file. A nil file means the user cancelled the
// dialog and clears the preview right away. The returned channel is closed
// once this selection has been applied or discarded as stale.
func (s *Selector) Select(ctx context.Context, file io.Reader) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	gen := s.current.Generation + 1
	if file == nil {
		snap := s.apply(Snapshot{State: Unselected, Generation: gen})
		s.mu.Unlock()
		s.notify(snap)
		close(done)
		return done
	}
	snap := s.apply(Snapshot{State: Decoding, Generation: gen})
	s.mu.Unlock()
	s.notify(snap)

	go func() {
		defer close(done)

		preview, err := s.decode(ctx, file)
		next := Snapshot{State: Selected, Preview: preview, Generation: gen}
		if err != nil {
			next = Snapshot{State: Unselected, Err: err, Generation: gen}
		}

		s.mu.Lock()
		if s.current.Generation != gen {
			s.mu.Unlock()
			return
		}
		snap := s.apply(next)
		s.mu.Unlock()
		if s.applied != nil {
			s.applied(snap)
		}
		s.notify(snap)
	}()

	return done
}

// Clear is Select with no file.
func (s *Selector) Clear() {
	<-s.Select(context.Background(), nil)
}

func (s *Selector) apply(next Snapshot) Snapshot {
	s.current = next
	return next
}

func (s *Selector) notify(snap Snapshot) {
	if s.onChange == nil {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	cur := s.Snapshot()
	if cur.Generation != snap.Generation || cur.State != snap.State {
		return
	}
	s.onChange(snap)
}

// DataURL reads file and encodes it as a base64 data URL. Only PNG and JPEG
// content is accepted.
func DataURL(ctx context.Context, file io.Reader) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/png", "image/jpeg":
	default:
		return "", fmt.Errorf("%w: got %s", ErrUnsupportedType, contentType)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
