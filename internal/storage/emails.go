// Package storage loads customer emails from disk and manages the intent
// classification CSV, including the write-back of batch results.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/valter-silva-au/mail-triage/pkg/models"
)

const defaultRecipient = "service@lcsc.com"

var (
	// Field labels may use an ASCII or a full-width colon.
	subjectPattern = regexp.MustCompile(`(?i)Subject[：:]\s*(.+)`)
	emailPattern   = regexp.MustCompile(`(?i)Email[：:]\s*(.+)`)
	namePattern    = regexp.MustCompile(`(?i)Name[：:]\s*(.+)`)
	addressPattern = regexp.MustCompile(`[^\s\n]+@[^\s\n]+`)
)

// EmailLoader reads customer emails from a directory of .txt files.
type EmailLoader interface {
	Load() ([]models.EmailRecord, error)
}

type dirEmailLoader struct {
	dir string
}

// NewEmailLoader creates an EmailLoader over a directory.
func NewEmailLoader(dir string) EmailLoader {
	return &dirEmailLoader{dir: dir}
}

// Load parses every .txt file in the directory and returns the emails
// sorted newest first by send time. A missing directory yields an empty
// list, not an error; individual unreadable files are skipped.
func (l *dirEmailLoader) Load() ([]models.EmailRecord, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading emails dir: %w", err)
	}

	var emails []models.EmailRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		record, err := parseEmailFile(path)
		if err != nil {
			continue
		}
		emails = append(emails, record)
	}

	sort.Slice(emails, func(i, j int) bool {
		return emails[i].SendTime.After(emails[j].SendTime)
	})
	return emails, nil
}

func parseEmailFile(path string) (models.EmailRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.EmailRecord{}, fmt.Errorf("reading email file: %w", err)
	}
	content := strings.TrimSpace(string(raw))

	subject := extractField(subjectPattern, content)
	if subject == "" {
		subject = "No Subject"
	}

	address := extractField(emailPattern, content)
	if address == "" {
		address = addressPattern.FindString(content)
	}
	if address == "" {
		address = "Unknown"
	}

	info, err := os.Stat(path)
	if err != nil {
		return models.EmailRecord{}, fmt.Errorf("stat email file: %w", err)
	}

	return models.EmailRecord{
		ID:        strings.TrimSuffix(filepath.Base(path), ".txt"),
		Sender:    formatSender(extractField(namePattern, content), address),
		Recipient: defaultRecipient,
		Subject:   subject,
		SendTime:  info.ModTime(),
		Status:    models.EmailPending,
		Content:   content,
		Source:    path,
	}, nil
}

func extractField(re *regexp.Regexp, content string) string {
	m := re.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// formatSender renders "Name <email>" when a name is known, otherwise just
// the address.
func formatSender(name, address string) string {
	name = strings.TrimSpace(name)
	if name != "" && name != "Unknown" {
		return fmt.Sprintf("%s <%s>", name, address)
	}
	return address
}
