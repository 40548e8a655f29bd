package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// fakeEmailLoader implements storage.EmailLoader over a fixed slice.
type fakeEmailLoader struct {
	emails []models.EmailRecord
	err    error
}

func (l *fakeEmailLoader) Load() ([]models.EmailRecord, error) {
	return l.emails, l.err
}

func TestProcessCommandNilGateway(t *testing.T) {
	origGateway := Gateway
	defer func() { Gateway = origGateway }()
	Gateway = nil

	err := processCmd.RunE(processCmd, nil)
	if err == nil {
		t.Fatal("expected error with nil gateway")
	}
	if !strings.Contains(err.Error(), "agent gateway not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveEmailByID(t *testing.T) {
	origEmails := Emails
	defer func() { Emails = origEmails }()

	Emails = &fakeEmailLoader{emails: []models.EmailRecord{
		{ID: "email_002", SendTime: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "email_001", SendTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}}

	record, err := resolveEmail([]string{"email_001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID != "email_001" {
		t.Errorf("expected email_001, got %s", record.ID)
	}

	// No argument picks the newest email.
	record, err = resolveEmail(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID != "email_002" {
		t.Errorf("expected newest email email_002, got %s", record.ID)
	}

	if _, err := resolveEmail([]string{"missing"}); err == nil {
		t.Error("expected error for unknown email id")
	}
}

func TestSenderAddress(t *testing.T) {
	tests := []struct {
		sender string
		want   string
	}{
		{"Maria Lopez <maria@example.com>", "maria@example.com"},
		{"bare@example.com", "bare@example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := senderAddress(tt.sender); got != tt.want {
			t.Errorf("senderAddress(%q) = %q, want %q", tt.sender, got, tt.want)
		}
	}
}
