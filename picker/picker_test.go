package picker

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSelectProducesDataURL(t *testing.T) {
	s := New()

	<-s.Select(context.Background(), bytes.NewReader(pngBytes))

	snap := s.Snapshot()
	assert.Equal(t, Selected, snap.State)
	assert.NoError(t, snap.Err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes), snap.Preview)
	assert.Equal(t, uint64(1), snap.Generation)
}

func TestSelectNoFileClearsPreview(t *testing.T) {
	s := New()
	<-s.Select(context.Background(), bytes.NewReader(pngBytes))
	require.Equal(t, Selected, s.Snapshot().State)

	<-s.Select(context.Background(), nil)

	snap := s.Snapshot()
	assert.Equal(t, Unselected, snap.State)
	assert.Empty(t, snap.Preview)
	assert.NoError(t, snap.Err)
}

func TestClearFromUnselected(t *testing.T) {
	s := New()
	s.Clear()
	assert.Equal(t, Unselected, s.Snapshot().State)
}

func TestSelectRejectsUnsupportedType(t *testing.T) {
	s := New()

	<-s.Select(context.Background(), strings.NewReader("GIF89a......"))

	snap := s.Snapshot()
	assert.Equal(t, Unselected, snap.State)
	assert.ErrorIs(t, snap.Err, ErrUnsupportedType)
	assert.Empty(t, snap.Preview)
}

// gatedDecoder finishes a decode only when its gate is released.
type gatedDecoder struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func (g *gatedDecoder) gate(name string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gates == nil {
		g.gates = map[string]chan struct{}{}
	}
	if g.gates[name] == nil {
		g.gates[name] = make(chan struct{})
	}
	return g.gates[name]
}

func (g *gatedDecoder) decode(_ context.Context, file io.Reader) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	<-g.gate(string(data))
	return "preview:" + string(data), nil
}

func TestStaleDecodeIsDiscarded(t *testing.T) {
	dec := &gatedDecoder{}
	s := New(WithDecoder(dec.decode))

	first := s.Select(context.Background(), strings.NewReader("first"))
	second := s.Select(context.Background(), strings.NewReader("second"))
	assert.Equal(t, Decoding, s.Snapshot().State)

	// the newer selection finishes first
	close(dec.gate("second"))
	<-second
	assert.Equal(t, "preview:second", s.Snapshot().Preview)

	// the older one finishing later must not win
	close(dec.gate("first"))
	<-first

	snap := s.Snapshot()
	assert.Equal(t, Selected, snap.State)
	assert.Equal(t, "preview:second", snap.Preview)
	assert.Equal(t, uint64(2), snap.Generation)
}

func TestCancelDuringDecodeDiscardsResult(t *testing.T) {
	dec := &gatedDecoder{}
	s := New(WithDecoder(dec.decode))

	pending := s.Select(context.Background(), strings.NewReader("slow"))
	<-s.Select(context.Background(), nil)

	close(dec.gate("slow"))
	<-pending

	snap := s.Snapshot()
	assert.Equal(t, Unselected, snap.State)
	assert.Empty(t, snap.Preview)
}

func TestOnChangeSeesTransitions(t *testing.T) {
	var (
		mu     sync.Mutex
		states []State
	)
	s := New(OnChange(func(snap Snapshot) {
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	}))

	<-s.Select(context.Background(), bytes.NewReader(pngBytes))
	<-s.Select(context.Background(), nil)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Decoding, Selected, Unselected}, states)
}

func TestOnChangeSkipsSupersededSnapshot(t *testing.T) {
	var (
		mu     sync.Mutex
		states []State
	)
	s := New(OnChange(func(snap Snapshot) {
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	}))

	entered := make(chan struct{})
	release := make(chan struct{})
	s.applied = func(snap Snapshot) {
		if snap.State == Selected {
			close(entered)
			<-release
		}
	}

	// the decode result is applied, then the user clears before it is delivered
	pending := s.Select(context.Background(), bytes.NewReader(pngBytes))
	<-entered
	<-s.Select(context.Background(), nil)
	close(release)
	<-pending

	assert.Equal(t, Unselected, s.Snapshot().State)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Decoding, Unselected}, states)
}
