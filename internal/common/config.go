package common

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/medview/labreport/constants"
)

// Config holds all application configuration.
type Config struct {
	Port string `mapstructure:"PORT"`

	// Generative backend
	GeminiAPIKey  string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel   string        `mapstructure:"GEMINI_MODEL"`
	AITemperature float32       `mapstructure:"AI_TEMPERATURE"`
	LLMTimeout    time.Duration `mapstructure:"LLM_TIMEOUT"`

	// Pipeline
	ValidationConfidenceThreshold float32 `mapstructure:"VALIDATION_CONFIDENCE_THRESHOLD"`
	PipelineMode                  string  `mapstructure:"PIPELINE_MODE"`

	// Uploads
	MaxFileSize int64 `mapstructure:"MAX_FILE_SIZE"`

	// Text-extraction engine
	Tesseract     string `mapstructure:"TESSERACT_CMD"`
	Pdftotext     string `mapstructure:"PDFTOTEXT_CMD"`
	TesseractLang string `mapstructure:"TESSERACT_LANG"`
	TessdataDir   string `mapstructure:"TESSDATA_PREFIX"`
}

// Load reads configuration from the environment plus an optional .env
// file. A missing GEMINI_API_KEY is allowed: the backend constructs in
// disabled mode and dependent stages degrade per their fallbacks.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("AI_TEMPERATURE", 0.1)
	v.SetDefault("LLM_TIMEOUT", "45s")
	v.SetDefault("VALIDATION_CONFIDENCE_THRESHOLD", 0.7)
	v.SetDefault("PIPELINE_MODE", "combined")
	v.SetDefault("MAX_FILE_SIZE", constants.MaxFileSizeDefault)
	v.SetDefault("TESSERACT_CMD", "tesseract")
	v.SetDefault("PDFTOTEXT_CMD", "pdftotext")
	v.SetDefault("TESSERACT_LANG", "eng")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT",
		"GEMINI_API_KEY",
		"GEMINI_MODEL",
		"AI_TEMPERATURE",
		"LLM_TIMEOUT",
		"VALIDATION_CONFIDENCE_THRESHOLD",
		"PIPELINE_MODE",
		"MAX_FILE_SIZE",
		"TESSERACT_CMD",
		"PDFTOTEXT_CMD",
		"TESSERACT_LANG",
		"TESSDATA_PREFIX",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.ValidationConfidenceThreshold < 0 || c.ValidationConfidenceThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "VALIDATION_CONFIDENCE_THRESHOLD must be in [0,1]", ErrInvalidInput)
	}
	if c.PipelineMode != "combined" && c.PipelineMode != "decomposed" {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown PIPELINE_MODE %q", c.PipelineMode), ErrInvalidInput)
	}
	if c.MaxFileSize <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_FILE_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}
