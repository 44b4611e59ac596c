package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/emotion-feedback/classifier"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefault_Valid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, classifier.DefaultThresholds(), c.Thresholds())
	assert.Equal(t, 4000, c.Sampling.UpdateIntervalMs)
	assert.Equal(t, "zh-TW", c.Feedback.Language)
	assert.Equal(t, 1, c.DetectorOptions().MaxFaces)
}

func TestLoader_File(t *testing.T) {
	p := writeConfig(t, `
pipeline:
  log_level: debug
sampling:
  update_interval_ms: 2000
  cooldown_ms: 1500
classifier:
  angry_confidence: 0.75
feedback:
  low_power_mode: true
suggestions:
  Happy: ["keep smiling"]
clips:
  tired: ["yawn.mp3"]
`)
	l := NewLoader(p)
	c, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, p, l.File())

	assert.Equal(t, "debug", c.Pipeline.LogLvl)
	assert.Equal(t, 2000, c.Sampling.UpdateIntervalMs)
	assert.Equal(t, 1500, c.Sampling.CooldownMs)
	assert.Equal(t, 100, c.Sampling.TickIntervalMs, "unset keys keep defaults")
	assert.Equal(t, 0.75, c.Thresholds().AngryConfidence)
	assert.Equal(t, 0.015, c.Thresholds().HappyMouthSlopeMax)
	assert.True(t, c.Feedback.LowPowerMode)
	assert.True(t, c.Feedback.SpeechEnabled)

	cat := c.Catalog()
	assert.Equal(t, []string{"keep smiling"}, cat.Suggestions[classifier.Happy])
	assert.Equal(t, []string{"yawn.mp3"}, cat.Clips[classifier.Tired])
	assert.NotEmpty(t, cat.Suggestions[classifier.Angry])
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("EMOFEEDBACK_SAMPLING_COOLDOWN_MS", "500")
	t.Setenv("EMOFEEDBACK_FEEDBACK_SPEECH_ENABLED", "false")
	p := writeConfig(t, "sampling:\n  cooldown_ms: 2000\n")

	c, err := NewLoader(p).Load()
	require.NoError(t, err)
	assert.Equal(t, 500, c.Sampling.CooldownMs)
	assert.False(t, c.Feedback.SpeechEnabled)
}

func TestLoader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"interval too short", "sampling:\n  update_interval_ms: 200\n", "update_interval_ms"},
		{"cooldown too long", "sampling:\n  cooldown_ms: 9000\n", "cooldown_ms"},
		{"angry too low", "classifier:\n  angry_confidence: 0.5\n", "angry_confidence"},
		{"angry at the cap", "classifier:\n  angry_confidence: 0.85\n", "angry_confidence"},
		{"two faces", "detector:\n  max_faces: 2\n", "max_faces"},
		{"unknown label", "suggestions:\n  excited: [\"wow\"]\n", "excited"},
		{"not yaml", "sampling: [", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(writeConfig(t, tt.body)).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	assert.Error(t, err)
}

func TestValidate_CollectsAll(t *testing.T) {
	c := Default()
	c.Sampling.TickIntervalMs = 0
	c.Sampling.CooldownMs = -1
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick_interval_ms")
	assert.Contains(t, err.Error(), "cooldown_ms")
}

func TestLoader_Watch(t *testing.T) {
	p := writeConfig(t, "sampling:\n  cooldown_ms: 1000\n")
	l := NewLoader(p)
	_, err := l.Load()
	require.NoError(t, err)

	got := make(chan *Root, 4)
	l.Watch(func(c *Root) { got <- c }, nil)

	require.NoError(t, os.WriteFile(p, []byte("sampling:\n  cooldown_ms: 2500\n"), 0o644))
	select {
	case c := <-got:
		assert.Equal(t, 2500, c.Sampling.CooldownMs)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, Default()))
	out := buf.String()
	assert.Contains(t, out, "update_interval_ms: 4000")
	assert.Contains(t, out, "angry_confidence: 0.8")
	assert.Contains(t, out, "language: zh-TW")
	assert.NotContains(t, out, "suggestions")
}

func TestDurMillis(t *testing.T) {
	assert.Equal(t, 3*time.Second, DurMillis(3000))
}
