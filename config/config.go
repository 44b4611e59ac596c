package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/emotion-feedback/classifier"
	"github.com/maastricht-university/emotion-feedback/landmarks"
	"github.com/maastricht-university/emotion-feedback/presentation"
)

const envPrefix = "EMOFEEDBACK"

type Service struct {
	URL string `yaml:"url" mapstructure:"url"`
}
type Services struct {
	Classifier Service `yaml:"classifier" mapstructure:"classifier"`
	Display    Service `yaml:"display" mapstructure:"display"`
	Voice      Service `yaml:"voice" mapstructure:"voice"`
	TimeoutMs  int     `yaml:"timeout_ms" mapstructure:"timeout_ms"`
}
type Sampling struct {
	UpdateIntervalMs int `yaml:"update_interval_ms" mapstructure:"update_interval_ms"`
	CooldownMs       int `yaml:"cooldown_ms" mapstructure:"cooldown_ms"`
	TickIntervalMs   int `yaml:"tick_interval_ms" mapstructure:"tick_interval_ms"`
}
type Classifier struct {
	AngryConfidence    float64 `yaml:"angry_confidence" mapstructure:"angry_confidence"`
	GeometricAngry     bool    `yaml:"geometric_angry" mapstructure:"geometric_angry"`
	HappyMouthSlopeMax float64 `yaml:"happy_mouth_slope_max" mapstructure:"happy_mouth_slope_max"`
	HappyBrowLiftMin   float64 `yaml:"happy_brow_lift_min" mapstructure:"happy_brow_lift_min"`
	HappyEyeOpenMin    float64 `yaml:"happy_eye_open_min" mapstructure:"happy_eye_open_min"`
	TiredEyeOpenMax    float64 `yaml:"tired_eye_open_max" mapstructure:"tired_eye_open_max"`
	TiredMouthOpenMin  float64 `yaml:"tired_mouth_open_min" mapstructure:"tired_mouth_open_min"`
	AngryBrowLiftMax   float64 `yaml:"angry_brow_lift_max" mapstructure:"angry_brow_lift_max"`
	AngryEyeOpenMax    float64 `yaml:"angry_eye_open_max" mapstructure:"angry_eye_open_max"`
	AngryMouthOpenMax  float64 `yaml:"angry_mouth_open_max" mapstructure:"angry_mouth_open_max"`
}
type Feedback struct {
	SpeechEnabled bool   `yaml:"speech_enabled" mapstructure:"speech_enabled"`
	LowPowerMode  bool   `yaml:"low_power_mode" mapstructure:"low_power_mode"`
	Language      string `yaml:"language" mapstructure:"language"`
}
type Detector struct {
	MaxFaces               int     `yaml:"max_faces" mapstructure:"max_faces"`
	RefineLandmarks        bool    `yaml:"refine_landmarks" mapstructure:"refine_landmarks"`
	MinDetectionConfidence float64 `yaml:"min_detection_confidence" mapstructure:"min_detection_confidence"`
	MinTrackingConfidence  float64 `yaml:"min_tracking_confidence" mapstructure:"min_tracking_confidence"`
}
type Root struct {
	Pipeline struct {
		Name    string `yaml:"name" mapstructure:"name"`
		Version string `yaml:"version" mapstructure:"version"`
		LogLvl  string `yaml:"log_level" mapstructure:"log_level"`
	} `yaml:"pipeline" mapstructure:"pipeline"`
	Sampling    Sampling            `yaml:"sampling" mapstructure:"sampling"`
	Classifier  Classifier          `yaml:"classifier" mapstructure:"classifier"`
	Feedback    Feedback            `yaml:"feedback" mapstructure:"feedback"`
	Services    Services            `yaml:"services" mapstructure:"services"`
	Detector    Detector            `yaml:"detector" mapstructure:"detector"`
	Suggestions map[string][]string `yaml:"suggestions,omitempty" mapstructure:"suggestions"`
	Clips       map[string][]string `yaml:"clips,omitempty" mapstructure:"clips"`
}

// Default returns the configuration used when no file sets a key.
func Default() *Root {
	var c Root
	c.Pipeline.Name = "emotion-feedback"
	c.Pipeline.Version = "0.1.0"
	c.Pipeline.LogLvl = "info"
	c.Sampling = Sampling{UpdateIntervalMs: 4000, CooldownMs: 3000, TickIntervalMs: 100}

	th := classifier.DefaultThresholds()
	c.Classifier = Classifier{
		AngryConfidence:    th.AngryConfidence,
		GeometricAngry:     th.GeometricAngry,
		HappyMouthSlopeMax: th.HappyMouthSlopeMax,
		HappyBrowLiftMin:   th.HappyBrowLiftMin,
		HappyEyeOpenMin:    th.HappyEyeOpenMin,
		TiredEyeOpenMax:    th.TiredEyeOpenMax,
		TiredMouthOpenMin:  th.TiredMouthOpenMin,
		AngryBrowLiftMax:   th.AngryBrowLiftMax,
		AngryEyeOpenMax:    th.AngryEyeOpenMax,
		AngryMouthOpenMax:  th.AngryMouthOpenMax,
	}
	c.Feedback = Feedback{SpeechEnabled: true, Language: "zh-TW"}
	c.Services.TimeoutMs = 5000

	d := landmarks.DefaultDetectorOptions()
	c.Detector = Detector{
		MaxFaces:               d.MaxFaces,
		RefineLandmarks:        d.RefineLandmarks,
		MinDetectionConfidence: d.MinDetectionConfidence,
		MinTrackingConfidence:  d.MinTrackingConfidence,
	}
	return &c
}

// Validate checks the recognised ranges.
func (c *Root) Validate() error {
	var errs []error
	if n := c.Sampling.UpdateIntervalMs; n < 1000 || n > 4000 {
		errs = append(errs, fmt.Errorf("sampling.update_interval_ms %d outside 1000..4000", n))
	}
	if n := c.Sampling.CooldownMs; n < 0 || n > 5000 {
		errs = append(errs, fmt.Errorf("sampling.cooldown_ms %d outside 0..5000", n))
	}
	if c.Sampling.TickIntervalMs <= 0 {
		errs = append(errs, errors.New("sampling.tick_interval_ms must be > 0"))
	}
	// the override needs a strictly greater probability, so 0.85 itself is out
	if p := c.Classifier.AngryConfidence; p < 0.7 || p >= 0.85 {
		errs = append(errs, fmt.Errorf("classifier.angry_confidence %.2f outside [0.7, 0.85)", p))
	}
	if c.Detector.MaxFaces != 1 {
		errs = append(errs, fmt.Errorf("detector.max_faces %d: only one face is supported", c.Detector.MaxFaces))
	}
	for k := range c.Suggestions {
		if _, err := classifier.ParseLabel(strings.ToLower(k)); err != nil {
			errs = append(errs, fmt.Errorf("suggestions: %w", err))
		}
	}
	for k := range c.Clips {
		if _, err := classifier.ParseLabel(strings.ToLower(k)); err != nil {
			errs = append(errs, fmt.Errorf("clips: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c *Root) Thresholds() classifier.Thresholds {
	k := c.Classifier
	return classifier.Thresholds{
		AngryConfidence:    k.AngryConfidence,
		GeometricAngry:     k.GeometricAngry,
		HappyMouthSlopeMax: k.HappyMouthSlopeMax,
		HappyBrowLiftMin:   k.HappyBrowLiftMin,
		HappyEyeOpenMin:    k.HappyEyeOpenMin,
		TiredEyeOpenMax:    k.TiredEyeOpenMax,
		TiredMouthOpenMin:  k.TiredMouthOpenMin,
		AngryBrowLiftMax:   k.AngryBrowLiftMax,
		AngryEyeOpenMax:    k.AngryEyeOpenMax,
		AngryMouthOpenMax:  k.AngryMouthOpenMax,
	}
}

// Catalog applies suggestion and clip overrides to the default catalog.
// Unknown labels are skipped; Validate reports them.
func (c *Root) Catalog() presentation.Catalog {
	return presentation.DefaultCatalog().Override(byLabel(c.Suggestions), byLabel(c.Clips))
}

func (c *Root) DetectorOptions() landmarks.DetectorOptions {
	return landmarks.DetectorOptions{
		MaxFaces:               c.Detector.MaxFaces,
		RefineLandmarks:        c.Detector.RefineLandmarks,
		MinDetectionConfidence: c.Detector.MinDetectionConfidence,
		MinTrackingConfidence:  c.Detector.MinTrackingConfidence,
	}
}

func byLabel(m map[string][]string) map[classifier.Label][]string {
	out := make(map[classifier.Label][]string, len(m))
	for k, v := range m {
		if l, err := classifier.ParseLabel(strings.ToLower(k)); err == nil {
			out[l] = v
		}
	}
	return out
}

// Loader reads the config file through viper and can watch it for changes.
type Loader struct {
	v *viper.Viper
}

// NewLoader uses path when set, otherwise the first existing file of
// config/<CONFIG_ENV>/config.yaml and configs/config.yaml. No file at all
// leaves the defaults plus environment overrides.
func NewLoader(path string) *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
	}
	return &Loader{v: v}
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("configs", "config.yaml"),
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (l *Loader) Load() (*Root, error) {
	if l.v.ConfigFileUsed() != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Root, error) {
	var c Root
	if err := l.v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// File is the config file in use, empty when running on defaults.
func (l *Loader) File() string { return l.v.ConfigFileUsed() }

// Watch calls fn with every valid reloaded config and onErr with every
// invalid one. It does nothing when no file is in use.
func (l *Loader) Watch(fn func(*Root), onErr func(error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		c, err := l.decode()
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		fn(c)
	})
	l.v.WatchConfig()
}

// Dump writes c as YAML.
func Dump(w io.Writer, c *Root) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func setDefaults(v *viper.Viper, c *Root) {
	v.SetDefault("pipeline.name", c.Pipeline.Name)
	v.SetDefault("pipeline.version", c.Pipeline.Version)
	v.SetDefault("pipeline.log_level", c.Pipeline.LogLvl)

	v.SetDefault("sampling.update_interval_ms", c.Sampling.UpdateIntervalMs)
	v.SetDefault("sampling.cooldown_ms", c.Sampling.CooldownMs)
	v.SetDefault("sampling.tick_interval_ms", c.Sampling.TickIntervalMs)

	k := c.Classifier
	v.SetDefault("classifier.angry_confidence", k.AngryConfidence)
	v.SetDefault("classifier.geometric_angry", k.GeometricAngry)
	v.SetDefault("classifier.happy_mouth_slope_max", k.HappyMouthSlopeMax)
	v.SetDefault("classifier.happy_brow_lift_min", k.HappyBrowLiftMin)
	v.SetDefault("classifier.happy_eye_open_min", k.HappyEyeOpenMin)
	v.SetDefault("classifier.tired_eye_open_max", k.TiredEyeOpenMax)
	v.SetDefault("classifier.tired_mouth_open_min", k.TiredMouthOpenMin)
	v.SetDefault("classifier.angry_brow_lift_max", k.AngryBrowLiftMax)
	v.SetDefault("classifier.angry_eye_open_max", k.AngryEyeOpenMax)
	v.SetDefault("classifier.angry_mouth_open_max", k.AngryMouthOpenMax)

	v.SetDefault("feedback.speech_enabled", c.Feedback.SpeechEnabled)
	v.SetDefault("feedback.low_power_mode", c.Feedback.LowPowerMode)
	v.SetDefault("feedback.language", c.Feedback.Language)

	v.SetDefault("services.classifier.url", "")
	v.SetDefault("services.display.url", "")
	v.SetDefault("services.voice.url", "")
	v.SetDefault("services.timeout_ms", c.Services.TimeoutMs)

	v.SetDefault("detector.max_faces", c.Detector.MaxFaces)
	v.SetDefault("detector.refine_landmarks", c.Detector.RefineLandmarks)
	v.SetDefault("detector.min_detection_confidence", c.Detector.MinDetectionConfidence)
	v.SetDefault("detector.min_tracking_confidence", c.Detector.MinTrackingConfidence)
}

func DurMillis(n int) time.Duration { return time.Duration(n) * time.Millisecond }
