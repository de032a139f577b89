// Package config resolves runtime settings from flags, environment and an
// optional config file through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/muhammadolammi/resumematch/internal/analyzer"
	"github.com/muhammadolammi/resumematch/internal/skills"
	"github.com/spf13/viper"
)

type Config struct {
	Port         int              `mapstructure:"port"`
	UploadDir    string           `mapstructure:"upload-dir"`
	SkillsDB     string           `mapstructure:"skills-db"`
	Tokenizer    string           `mapstructure:"tokenizer"`
	MatchPhrases bool             `mapstructure:"match-phrases"`
	Weights      analyzer.Weights `mapstructure:"weights"`
	Debug        bool             `mapstructure:"debug"`
	JSON         bool             `mapstructure:"json"`
	Worker       WorkerConfig     `mapstructure:"worker"`
}

type WorkerConfig struct {
	Count       int      `mapstructure:"count"`
	DBURL       string   `mapstructure:"db-url"`
	RabbitMQURL string   `mapstructure:"rabbitmq-url"`
	R2          R2Config `mapstructure:"r2"`
}

type R2Config struct {
	AccountID string `mapstructure:"account-id"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access-key"`
	SecretKey string `mapstructure:"secret-key"`
}

// env bindings, kept compatible with the variables the worker always read.
var envKeys = map[string]string{
	"port":                 "PORT",
	"upload-dir":           "UPLOAD_DIR",
	"skills-db":            "SKILLS_DB",
	"tokenizer":            "TOKENIZER",
	"match-phrases":        "MATCH_PHRASES",
	"weights.skill":        "SKILL_WEIGHT",
	"weights.content":      "CONTENT_WEIGHT",
	"worker.count":         "WORKER_COUNT",
	"worker.db-url":        "DB_URL",
	"worker.rabbitmq-url":  "RABBITMQ_URL",
	"worker.r2.account-id": "R2_ACCCOUNT_ID",
	"worker.r2.bucket":     "R2_BUCKET",
	"worker.r2.access-key": "R2_ACCESS_KEY",
	"worker.r2.secret-key": "R2_SECRET_KEY",
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) error {
	v.SetDefault("port", 5000)
	v.SetDefault("upload-dir", "uploads")
	v.SetDefault("skills-db", "skills_db.json")
	v.SetDefault("tokenizer", "prose")
	v.SetDefault("match-phrases", false)
	v.SetDefault("weights.skill", analyzer.DefaultSkillWeight)
	v.SetDefault("weights.content", analyzer.DefaultContentWeight)
	v.SetDefault("worker.count", 3)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s environment variable: %w", env, err)
		}
	}
	return nil
}

// Load unmarshals v into a Config and validates the analysis settings.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("config error: port must be positive, got %d", cfg.Port)
	}
	return &cfg, nil
}

// ValidateWorker reports every missing setting the queue worker needs.
func (c *Config) ValidateWorker() error {
	var errs []error
	required := []struct{ env, val string }{
		{"DB_URL", c.Worker.DBURL},
		{"RABBITMQ_URL", c.Worker.RabbitMQURL},
		{"R2_ACCCOUNT_ID", c.Worker.R2.AccountID},
		{"R2_BUCKET", c.Worker.R2.Bucket},
		{"R2_ACCESS_KEY", c.Worker.R2.AccessKey},
		{"R2_SECRET_KEY", c.Worker.R2.SecretKey},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			errs = append(errs, fmt.Errorf("empty %s in environment", r.env))
		}
	}
	if c.Worker.Count <= 0 {
		errs = append(errs, fmt.Errorf("worker count must be positive, got %d", c.Worker.Count))
	}
	return errors.Join(errs...)
}

// VocabularySource maps the skills-db setting to a vocabulary source.
func (c *Config) VocabularySource() skills.VocabularySource {
	return skills.VocabularySource{Path: c.SkillsDB}
}

// ExtractorOptions returns the skill extractor options implied by the config.
func (c *Config) ExtractorOptions() []skills.ExtractorOption {
	if c.MatchPhrases {
		return []skills.ExtractorOption{skills.WithPhraseMatching()}
	}
	return nil
}
