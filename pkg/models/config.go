package models

import "time"

// Config holds runtime configuration loaded from .mailtriagerc.
type Config struct {
	// DataDir contains the business CSV tables.
	DataDir string `yaml:"data_dir"`
	// EmailsDir contains plain-text email files.
	EmailsDir string `yaml:"emails_dir"`
	// IntentCSV is the tabular email source and write-back target.
	IntentCSV string `yaml:"intent_csv"`
	// TemplatesFile holds general-inquiry reply templates (YAML).
	TemplatesFile string `yaml:"templates_file"`
	// Model names the hosted model the gateway should use.
	Model string `yaml:"model"`
	// OfflineMode forces the deterministic scripted gateway.
	OfflineMode bool `yaml:"offline_mode"`
	// BatchPause is the fixed pause between batch records.
	BatchPause time.Duration `yaml:"batch_pause"`
	// BatchMaxEmails caps a batch run; zero means no cap.
	BatchMaxEmails int `yaml:"batch_max_emails"`
}
