package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lixenwraith/fitts/audio"
	"github.com/lixenwraith/fitts/cursor"
	"github.com/lixenwraith/fitts/layout"
	"github.com/lixenwraith/fitts/logging"
	"github.com/lixenwraith/fitts/study"
)

// File lookup
const (
	ConfigName = "fitts"
	EnvPrefix  = "FITTS"
)

// Config is the top-level configuration
type Config struct {
	ParticipantID string `mapstructure:"participant_id"`
	CursorType    string `mapstructure:"cursor_type"`
	Seed          uint64 `mapstructure:"seed"` // 0 picks a random seed at startup

	Study   StudyConfig    `mapstructure:"study"`
	Bubble  BubbleConfig   `mapstructure:"bubble"`
	Layout  LayoutConfig   `mapstructure:"layout"`
	Motion  MotionConfig   `mapstructure:"motion"`
	Timing  TimingConfig   `mapstructure:"timing"`
	Session SessionConfig  `mapstructure:"session"`
	Data    DataConfig     `mapstructure:"data"`
	Logging logging.Config `mapstructure:"logging"`
	Audio   audio.Config   `mapstructure:"audio"`
}

// StudyConfig holds the factorial design
type StudyConfig struct {
	TargetSizes     []float64 `mapstructure:"target_sizes"`
	Amplitudes      []float64 `mapstructure:"amplitudes"`
	EWRatios        []float64 `mapstructure:"ew_ratios"`
	Distractors     int       `mapstructure:"distractors"`
	StationaryCount int       `mapstructure:"stationary_count"` // Negative: half of the combinations
	TotalTrials     int       `mapstructure:"total_trials"`
	RepeatBlock     bool      `mapstructure:"repeat_block"`
	Clustered       bool      `mapstructure:"clustered"`
}

// BubbleConfig holds the bubble cursor radii
type BubbleConfig struct {
	MinRadius float64 `mapstructure:"min_radius"`
	MaxRadius float64 `mapstructure:"max_radius"`
}

// LayoutConfig tunes target placement
type LayoutConfig struct {
	MinSpacing     float64 `mapstructure:"min_spacing"`
	MaxAttempts    int     `mapstructure:"max_attempts"`
	ClusterSpacing float64 `mapstructure:"cluster_spacing"`
	KeepInBounds   bool    `mapstructure:"keep_in_bounds"`
}

// MotionConfig tunes moving distractors
type MotionConfig struct {
	BaseSpeed      float64 `mapstructure:"base_speed"`
	MovingPerTrial int     `mapstructure:"moving_per_trial"`
	PathPoints     int     `mapstructure:"path_points"`
}

// TimingConfig holds the study delays and frame rate
type TimingConfig struct {
	FeedbackDelay time.Duration `mapstructure:"feedback_delay"`
	SettleDelay   time.Duration `mapstructure:"settle_delay"`
	TickRate      time.Duration `mapstructure:"tick_rate"`
}

// SessionConfig holds streak and warm-up behavior
type SessionConfig struct {
	StreakThreshold int  `mapstructure:"streak_threshold"`
	Warmup          bool `mapstructure:"warmup"`
}

// DataConfig locates the trial log and summary files
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// setDefaults holds the study design used when no file overrides it
func setDefaults(v *viper.Viper) {
	v.SetDefault("participant_id", "")
	v.SetDefault("cursor_type", "bubble")
	v.SetDefault("seed", 0)

	v.SetDefault("study.target_sizes", []float64{1, 1.5, 2})
	v.SetDefault("study.amplitudes", []float64{4, 8, 12})
	v.SetDefault("study.ew_ratios", []float64{0.5, 1, 1.5})
	v.SetDefault("study.distractors", 4)
	v.SetDefault("study.stationary_count", -1)
	v.SetDefault("study.total_trials", 27)
	v.SetDefault("study.repeat_block", false)
	v.SetDefault("study.clustered", true)

	v.SetDefault("bubble.min_radius", cursor.DefaultMinRadius)
	v.SetDefault("bubble.max_radius", cursor.DefaultMaxRadius)

	v.SetDefault("layout.min_spacing", layout.DefaultMinSpacing)
	v.SetDefault("layout.max_attempts", layout.DefaultMaxAttempts)
	v.SetDefault("layout.cluster_spacing", layout.DefaultClusterSpacing)
	v.SetDefault("layout.keep_in_bounds", true)

	v.SetDefault("motion.base_speed", study.DefaultBaseSpeed)
	v.SetDefault("motion.moving_per_trial", 2)
	v.SetDefault("motion.path_points", study.DefaultPathPoints)

	v.SetDefault("timing.feedback_delay", study.DefaultFeedbackDelay)
	v.SetDefault("timing.settle_delay", study.DefaultSettleDelay)
	v.SetDefault("timing.tick_rate", 16*time.Millisecond)

	v.SetDefault("session.streak_threshold", study.DefaultStreakThreshold)
	v.SetDefault("session.warmup", true)

	v.SetDefault("data.dir", "data")

	ac := audio.DefaultConfig()
	v.SetDefault("audio.enabled", ac.Enabled)
	v.SetDefault("audio.master_volume", ac.MasterVolume)
	v.SetDefault("audio.sample_rate", ac.SampleRate)

	lc := logging.DefaultConfig()
	v.SetDefault("logging.directory", lc.Directory)
	v.SetDefault("logging.level", lc.Level)
	v.SetDefault("logging.max_size", lc.MaxSize)
	v.SetDefault("logging.max_backups", lc.MaxBackups)
	v.SetDefault("logging.max_age", lc.MaxAge)
	v.SetDefault("logging.compress", lc.Compress)
}

// Load reads configuration from path, or searches ./config and . for fitts.yaml
// A missing searched file is fine; defaults and FITTS_* env vars apply
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix) // e.g. FITTS_STUDY_TOTAL_TRIALS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &cfg, nil
}

// Settings converts the study section into sequencer settings
func (c *Config) Settings() (study.Settings, error) {
	ct, err := cursor.ParseType(c.CursorType)
	if err != nil {
		return study.Settings{}, &study.ConfigError{Field: "cursor_type", Reason: err.Error()}
	}

	stationary := c.Study.StationaryCount
	if stationary < 0 {
		stationary = len(c.Study.EWRatios) * len(c.Study.TargetSizes) * len(c.Study.Amplitudes) / 2
	}

	return study.Settings{
		ParticipantID:   c.ParticipantID,
		Cursor:          ct,
		TargetSizes:     c.Study.TargetSizes,
		Amplitudes:      c.Study.Amplitudes,
		EWRatios:        c.Study.EWRatios,
		Distractors:     c.Study.Distractors,
		StationaryCount: stationary,
		TotalTrials:     c.Study.TotalTrials,
		RepeatBlock:     c.Study.RepeatBlock,
	}, nil
}

// Validate reports every setting that would block the study
func (c *Config) Validate() error {
	var errs []error

	s, err := c.Settings()
	if err != nil {
		errs = append(errs, err)
	} else if err := s.Validate(); err != nil {
		errs = append(errs, err)
	}

	if err := c.BubbleConfig().Validate(); err != nil {
		errs = append(errs, &study.ConfigError{Field: "bubble", Reason: err.Error()})
	}
	if c.Timing.TickRate <= 0 {
		errs = append(errs, &study.ConfigError{Field: "timing.tick_rate", Reason: "must be positive"})
	}
	if c.Timing.FeedbackDelay < 0 || c.Timing.SettleDelay < 0 {
		errs = append(errs, &study.ConfigError{Field: "timing", Reason: "delays must not be negative"})
	}
	return errors.Join(errs...)
}

// BubbleConfig returns the cursor radii
func (c *Config) BubbleConfig() cursor.BubbleConfig {
	return cursor.BubbleConfig{MinRadius: c.Bubble.MinRadius, MaxRadius: c.Bubble.MaxRadius}
}

// LayoutConfig returns the placement tuning
func (c *Config) LayoutConfig() layout.Config {
	return layout.Config{
		MinSpacing:     c.Layout.MinSpacing,
		MaxAttempts:    c.Layout.MaxAttempts,
		ClusterSpacing: c.Layout.ClusterSpacing,
		KeepInBounds:   c.Layout.KeepInBounds,
	}
}

// SessionOptions fills everything the config owns; the caller adds rng, bounds,
// recorder, feedback and logger
func (c *Config) SessionOptions() (study.Options, error) {
	s, err := c.Settings()
	if err != nil {
		return study.Options{}, err
	}
	return study.Options{
		Settings: s,
		Layout:   c.LayoutConfig(),
		Bubble:   c.BubbleConfig(),
		Motion: study.MotionConfig{
			BaseSpeed:      c.Motion.BaseSpeed,
			MovingPerTrial: c.Motion.MovingPerTrial,
			PathPoints:     c.Motion.PathPoints,
		},
		Clustered:       c.Study.Clustered,
		Warmup:          c.Session.Warmup,
		StreakThreshold: c.Session.StreakThreshold,
		FeedbackDelay:   c.Timing.FeedbackDelay,
		SettleDelay:     c.Timing.SettleDelay,
	}, nil
}
