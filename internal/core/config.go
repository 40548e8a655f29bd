package core

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// ConfigLoader reads the .mailtriagerc file from a base path.
type ConfigLoader interface {
	Load() (*models.Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper for reading the
// YAML configuration file.
type viperConfigLoader struct {
	basePath string
}

// NewConfigLoader creates a ConfigLoader rooted at basePath.
func NewConfigLoader(basePath string) ConfigLoader {
	return &viperConfigLoader{basePath: basePath}
}

// defaultConfig returns a Config populated with sensible defaults.
func defaultConfig(basePath string) *models.Config {
	return &models.Config{
		DataDir:        filepath.Join(basePath, "data"),
		EmailsDir:      filepath.Join(basePath, "emails"),
		IntentCSV:      filepath.Join(basePath, "intent", "emails-intent.csv"),
		TemplatesFile:  filepath.Join(basePath, "templates.yaml"),
		Model:          "claude-3-7-sonnet",
		OfflineMode:    true,
		BatchPause:     500 * time.Millisecond,
		BatchMaxEmails: 0,
	}
}

// Load reads the .mailtriagerc file. If the file does not exist, defaults
// are returned.
func (cl *viperConfigLoader) Load() (*models.Config, error) {
	cfg := defaultConfig(cl.basePath)

	v := viper.New()
	v.SetConfigName(".mailtriagerc")
	v.SetConfigType("yaml")
	v.AddConfigPath(cl.basePath)

	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("emails_dir", cfg.EmailsDir)
	v.SetDefault("intent_csv", cfg.IntentCSV)
	v.SetDefault("templates_file", cfg.TemplatesFile)
	v.SetDefault("model", cfg.Model)
	v.SetDefault("offline_mode", cfg.OfflineMode)
	v.SetDefault("batch.pause_ms", int(cfg.BatchPause/time.Millisecond))
	v.SetDefault("batch.max_emails", cfg.BatchMaxEmails)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .mailtriagerc: %w", err)
	}

	cfg.DataDir = v.GetString("data_dir")
	cfg.EmailsDir = v.GetString("emails_dir")
	cfg.IntentCSV = v.GetString("intent_csv")
	cfg.TemplatesFile = v.GetString("templates_file")
	cfg.Model = v.GetString("model")
	cfg.OfflineMode = v.GetBool("offline_mode")
	cfg.BatchPause = time.Duration(v.GetInt("batch.pause_ms")) * time.Millisecond
	cfg.BatchMaxEmails = v.GetInt("batch.max_emails")

	if cfg.BatchPause < 0 {
		return nil, fmt.Errorf("batch.pause_ms must be non-negative, got %d", cfg.BatchPause/time.Millisecond)
	}
	if cfg.BatchMaxEmails < 0 {
		return nil, fmt.Errorf("batch.max_emails must be non-negative, got %d", cfg.BatchMaxEmails)
	}

	return cfg, nil
}
