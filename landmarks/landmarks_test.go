package landmarks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_KeepsLatest(t *testing.T) {
	ch := make(chan Frame)
	s := NewStream(ch)

	_, ok := s.Latest()
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	ch <- Frame{Face: Set{{X: 0.1, Y: 0.2}}}
	ch <- Frame{} // no face replaces the previous frame
	close(ch)
	<-done

	f, ok := s.Latest()
	require.True(t, ok)
	assert.False(t, f.HasFace())
	assert.Equal(t, 2, s.Frames())
}

func TestStream_StopsOnCancel(t *testing.T) {
	s := NewStream(make(chan Frame))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestReplay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f1.jpg"), []byte("jpeg"), 0o644))

	rec := strings.Join([]string{
		`{"at_ms":0,"points":[{"x":0.1,"y":0.2},{"x":0.3,"y":0.4,"z":0.01}],"image":"f1.jpg"}`,
		``,
		`{"at_ms":10,"points":[]}`,
	}, "\n")

	out := make(chan Frame, 4)
	err := Replay(context.Background(), strings.NewReader(rec), out, ReplayOptions{BaseDir: dir})
	require.NoError(t, err)

	var got []Frame
	for f := range out {
		got = append(got, f)
	}
	require.Len(t, got, 2)
	assert.Len(t, got[0].Face, 2)
	assert.Equal(t, 0.01, got[0].Face[1].Z)
	assert.Equal(t, []byte("jpeg"), got[0].Image)
	assert.False(t, got[1].HasFace())
}

func TestReplay_BadLine(t *testing.T) {
	out := make(chan Frame, 4)
	err := Replay(context.Background(), strings.NewReader("{\"at_ms\":0}\nnot json\n"), out, ReplayOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, open := <-out // first frame
	assert.True(t, open)
	_, open = <-out
	assert.False(t, open)
}

func TestReplay_Paced(t *testing.T) {
	rec := "{\"at_ms\":0}\n{\"at_ms\":60}\n"
	out := make(chan Frame, 4)
	start := time.Now()
	require.NoError(t, Replay(context.Background(), strings.NewReader(rec), out, ReplayOptions{Speed: 1}))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestReplay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make(chan Frame) // unbuffered, nobody reads
	err := Replay(ctx, strings.NewReader("{\"at_ms\":0}\n"), out, ReplayOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultDetectorOptions(t *testing.T) {
	o := DefaultDetectorOptions()
	assert.Equal(t, 1, o.MaxFaces)
	assert.True(t, o.RefineLandmarks)
	assert.Equal(t, 0.5, o.MinDetectionConfidence)
}
