// Package config loads service settings from the environment, an optional
// .env file and an optional TOML overlay named by ROAST_CONFIG_FILE.
//
// Precedence, lowest first: built-in defaults, TOML file, environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// GeminiSettings configures the three Gemini model calls
type GeminiSettings struct {
	APIKey         string  `toml:"-"`
	BaseURL        string  `toml:"base_url"`
	Mock           bool    `toml:"mock"`
	VisionModel    string  `toml:"vision_model"`
	TTSModel       string  `toml:"tts_model"`
	TTSVoice       string  `toml:"tts_voice"`
	TTSSampleRate  int     `toml:"tts_sample_rate"`
	AnimationModel string  `toml:"animation_model"`
	RoastTemp      float32 `toml:"roast_temperature"`
	RoastMaxTokens int     `toml:"roast_max_tokens"`
}

// AnimationSettings configures script generation and validation tolerances
type AnimationSettings struct {
	Temperature       float32 `toml:"temperature"`
	MaxTokens         int     `toml:"max_tokens"`
	DurationTolerance float64 `toml:"duration_tolerance"`
	MaxGap            float64 `toml:"max_gap"`
	StartTolerance    float64 `toml:"start_tolerance"`
	EndTolerance      float64 `toml:"end_tolerance"`
	MinKeyframes      int     `toml:"min_keyframes"`
	MaxKeyframes      int     `toml:"max_keyframes"`
}

type Config struct {
	Port               string            `toml:"port"`
	LogLevel           string            `toml:"log_level"`
	MaxImageDimension  int               `toml:"max_image_dimension"`
	MaxUploadBytes     int64             `toml:"max_upload_bytes"`
	UpstreamTimeoutSec int               `toml:"upstream_timeout_sec"`
	EnableAudio        bool              `toml:"enable_audio"`
	EnableAnimation    bool              `toml:"enable_animation"`
	EnableAudioTest    bool              `toml:"enable_audio_test"`
	AudioTestDir       string            `toml:"audio_test_dir"`
	Gemini             GeminiSettings    `toml:"gemini"`
	Animation          AnimationSettings `toml:"animation"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Port:               "8080",
		LogLevel:           "info",
		MaxImageDimension:  1024,
		MaxUploadBytes:     20 << 20,
		UpstreamTimeoutSec: 60,
		EnableAudio:        true,
		EnableAnimation:    true,
		AudioTestDir:       filepath.Join(os.TempDir(), "roast-me"),
		Gemini: GeminiSettings{
			VisionModel:    "gemini-3-flash-preview",
			TTSModel:       "gemini-2.5-flash-preview-tts",
			TTSVoice:       "Aoede",
			TTSSampleRate:  24000,
			RoastTemp:      0.8,
			RoastMaxTokens: 2000,
		},
		Animation: AnimationSettings{
			Temperature:       0.7,
			MaxTokens:         2000,
			DurationTolerance: 2,
			MaxGap:            1,
			StartTolerance:    0.5,
			EndTolerance:      1,
			MinKeyframes:      3,
			MaxKeyframes:      10,
		},
	}
}

// Load builds the configuration and validates it. A missing GEMINI_API_KEY
// is not an error here; callers warn and fail per request instead.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("ROAST_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.MaxImageDimension = getEnvInt("MAX_IMAGE_DIMENSION", cfg.MaxImageDimension)
	cfg.MaxUploadBytes = getEnvInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.UpstreamTimeoutSec = getEnvInt("UPSTREAM_TIMEOUT_SEC", cfg.UpstreamTimeoutSec)
	cfg.EnableAudio = getEnvBool("ENABLE_AUDIO", cfg.EnableAudio)
	cfg.EnableAnimation = getEnvBool("ENABLE_ANIMATION", cfg.EnableAnimation)
	if v, ok := os.LookupEnv("ENABLE_AUDIO_TEST"); ok {
		cfg.EnableAudioTest = v == "true"
	}
	cfg.AudioTestDir = getEnv("AUDIO_TEST_DIR", cfg.AudioTestDir)

	cfg.Gemini.APIKey = getEnv("GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.BaseURL = strings.TrimRight(getEnv("GEMINI_BASE_URL", cfg.Gemini.BaseURL), "/")
	cfg.Gemini.Mock = getEnvBool("GEMINI_MOCK", cfg.Gemini.Mock)
	cfg.Gemini.VisionModel = getEnv("VISION_MODEL", cfg.Gemini.VisionModel)
	cfg.Gemini.TTSModel = getEnv("TTS_MODEL", cfg.Gemini.TTSModel)
	cfg.Gemini.TTSVoice = getEnv("TTS_VOICE", cfg.Gemini.TTSVoice)
	cfg.Gemini.AnimationModel = getEnv("ANIMATION_MODEL", cfg.Gemini.AnimationModel)
	cfg.Gemini.RoastTemp = getEnvFloat32("ROAST_TEMPERATURE", cfg.Gemini.RoastTemp)
	cfg.Gemini.RoastMaxTokens = getEnvInt("ROAST_MAX_TOKENS", cfg.Gemini.RoastMaxTokens)
	if cfg.Gemini.AnimationModel == "" {
		cfg.Gemini.AnimationModel = cfg.Gemini.VisionModel
	}

	cfg.Animation.Temperature = getEnvFloat32("ANIMATION_TEMPERATURE", cfg.Animation.Temperature)
	cfg.Animation.MaxTokens = getEnvInt("ANIMATION_MAX_TOKENS", cfg.Animation.MaxTokens)
}

// UpstreamTimeout bounds every remote model call.
func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSec) * time.Second
}

// Validate rejects settings that would make the pipeline misbehave.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.MaxImageDimension <= 0 {
		return fmt.Errorf("max image dimension must be > 0, got %d", c.MaxImageDimension)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be > 0, got %d", c.MaxUploadBytes)
	}
	if c.UpstreamTimeoutSec <= 0 {
		return fmt.Errorf("upstream timeout must be > 0, got %d", c.UpstreamTimeoutSec)
	}
	if c.Gemini.RoastTemp < 0 || c.Gemini.RoastTemp > 2 {
		return fmt.Errorf("roast temperature must be between 0 and 2, got %f", c.Gemini.RoastTemp)
	}
	if c.Gemini.RoastMaxTokens <= 0 {
		return fmt.Errorf("roast max tokens must be > 0, got %d", c.Gemini.RoastMaxTokens)
	}
	if c.Gemini.TTSSampleRate <= 0 {
		return fmt.Errorf("tts sample rate must be > 0, got %d", c.Gemini.TTSSampleRate)
	}

	a := c.Animation
	if a.Temperature < 0 || a.Temperature > 2 {
		return fmt.Errorf("animation temperature must be between 0 and 2, got %f", a.Temperature)
	}
	if a.MaxTokens <= 0 {
		return fmt.Errorf("animation max tokens must be > 0, got %d", a.MaxTokens)
	}
	if a.DurationTolerance < 0 || a.MaxGap < 0 || a.StartTolerance < 0 || a.EndTolerance < 0 {
		return errors.New("animation tolerances must not be negative")
	}
	if a.MinKeyframes < 1 || a.MaxKeyframes < a.MinKeyframes {
		return fmt.Errorf("animation keyframe bounds invalid: min %d max %d", a.MinKeyframes, a.MaxKeyframes)
	}
	return nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat32(key string, fallback float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
