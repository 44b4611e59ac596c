package presentation

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/emotion-feedback/classifier"
	"github.com/maastricht-university/emotion-feedback/clients"
)

func TestCatalog_PickFromPool(t *testing.T) {
	c := DefaultCatalog()
	rng := rand.New(rand.NewSource(1))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		text, clip := c.Pick(classifier.Tired, rng)
		assert.Contains(t, c.Suggestions[classifier.Tired], text)
		assert.Contains(t, c.Clips[classifier.Tired], clip)
		seen[text] = true
	}
	assert.Len(t, seen, 3, "every suggestion should come up")
}

func TestCatalog_EveryLabelStyled(t *testing.T) {
	c := DefaultCatalog()
	for _, l := range classifier.Labels() {
		s := c.Style(l)
		assert.NotEqual(t, fallbackEmoji, s.Emoji, l.String())
		assert.NotEmpty(t, c.Suggestions[l])
		assert.NotEmpty(t, c.Clips[l])
	}
	assert.Equal(t, fallbackEmoji, c.Style(classifier.Label(42)).Emoji)
}

func TestCatalog_Override(t *testing.T) {
	base := DefaultCatalog()
	c := base.Override(
		map[classifier.Label][]string{classifier.Happy: {"nice"}, classifier.Angry: nil},
		map[classifier.Label][]string{classifier.Happy: {"yay.mp3"}},
	)
	rng := rand.New(rand.NewSource(1))

	text, clip := c.Pick(classifier.Happy, rng)
	assert.Equal(t, "nice", text)
	assert.Equal(t, "yay.mp3", clip)
	assert.Equal(t, base.Suggestions[classifier.Angry], c.Suggestions[classifier.Angry])
	assert.Len(t, base.Suggestions[classifier.Happy], 3, "base catalog must not change")
}

func TestCatalog_EmptyPools(t *testing.T) {
	c := Catalog{}
	text, clip := c.Pick(classifier.Happy, rand.New(rand.NewSource(1)))
	assert.Equal(t, fallbackSuggestion, text)
	assert.Empty(t, clip)
}

type fakeHandle struct {
	clip    string
	stopped *[]string
}

func (h fakeHandle) Stop() { *h.stopped = append(*h.stopped, h.clip) }

type fakeBackend struct {
	mu      sync.Mutex
	played  []string
	stopped []string
	fail    bool
}

func (b *fakeBackend) Play(_ context.Context, clip string) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return nil, errors.New("autoplay blocked")
	}
	b.played = append(b.played, clip)
	return fakeHandle{clip: clip, stopped: &b.stopped}, nil
}

func TestPlayer_LastWriterWins(t *testing.T) {
	b := &fakeBackend{}
	p := NewPlayer(b)
	ctx := context.Background()

	require.NoError(t, p.Play(ctx, "a.mp3"))
	require.NoError(t, p.Play(ctx, "b.mp3"))
	assert.Equal(t, []string{"a.mp3", "b.mp3"}, b.played)
	assert.Equal(t, []string{"a.mp3"}, b.stopped)
	assert.True(t, p.Playing())

	p.Stop()
	assert.Equal(t, []string{"a.mp3", "b.mp3"}, b.stopped)
	assert.False(t, p.Playing())
}

func TestPlayer_Failure(t *testing.T) {
	b := &fakeBackend{}
	p := NewPlayer(b)
	require.NoError(t, p.Play(context.Background(), "a.mp3"))

	b.fail = true
	err := p.Play(context.Background(), "b.mp3")
	assert.ErrorIs(t, err, ErrPlayback)
	assert.Equal(t, []string{"a.mp3"}, b.stopped, "previous clip is stopped even when the new one fails")
	assert.False(t, p.Playing())
}

func TestPlayer_FailureKeepsCause(t *testing.T) {
	p := NewPlayer(&causeBackend{err: context.Canceled})
	err := p.Play(context.Background(), "a.mp3")
	assert.ErrorIs(t, err, ErrPlayback)
	assert.ErrorIs(t, err, context.Canceled)
}

type causeBackend struct{ err error }

func (b *causeBackend) Play(context.Context, string) (Handle, error) { return nil, b.err }

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	s := NewLogSink(log)
	require.NoError(t, s.Render(context.Background(), Render{
		Label:      classifier.Happy,
		Emoji:      "😊",
		Suggestion: "smile back",
		Tally:      map[classifier.Label]int{classifier.Happy: 2},
	}))
	out := buf.String()
	assert.Contains(t, out, "smile back")
	assert.Contains(t, out, "emotion=happy")
	assert.Contains(t, out, "tally_happy=2")
}

type errSink struct{ err error }

func (s errSink) Render(context.Context, Render) error { return s.err }

func TestMultiSink(t *testing.T) {
	boom := errors.New("boom")
	m := MultiSink{errSink{}, errSink{err: boom}}
	assert.ErrorIs(t, m.Render(context.Background(), Render{}), boom)
	assert.NoError(t, MultiSink{errSink{}}.Render(context.Background(), Render{}))
}

func TestRemoteSinkAndVoice(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/play":
			w.Write([]byte(`{"handle":"h1"}`))
		case "/speak":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	h := clients.NewHTTP()
	log := logrus.New()
	ctx := context.Background()

	sink := NewRemoteSink(h, server.URL)
	require.NoError(t, sink.Render(ctx, Render{Label: classifier.Angry, Tally: map[classifier.Label]int{classifier.Angry: 1}}))

	p := NewPlayer(NewRemoteBackend(h, server.URL, log))
	require.NoError(t, p.Play(ctx, "angry_1.mp3"))
	p.Stop()

	sp := NewRemoteSpeaker(h, server.URL, log)
	err := sp.Speak(ctx, "hello", "zh-TW")
	assert.ErrorIs(t, err, ErrPlayback)
	assert.Contains(t, err.Error(), "403")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, sp.Speak(cancelled, "hello", "zh-TW"), context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/render", "/chart", "/play", "/stop", "/speak"}, paths, "a cancelled request never reaches the server")
}
