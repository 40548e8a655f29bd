// Package models defines the shared data model for the mail-triage system:
// email records, business entities (customers, orders, products), and the
// batch-run result shapes exchanged between components.
package models

import "time"

// EmailStatus represents the triage state of an email record.
type EmailStatus string

const (
	EmailPending   EmailStatus = "Pending"
	EmailProcessed EmailStatus = "Processed"
)

// EmailRecord is a normalized customer-service email. Records are created at
// load time and never mutated; a reload supersedes the previous records.
type EmailRecord struct {
	ID        string      `json:"id"`
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient"`
	Subject   string      `json:"subject"`
	SendTime  time.Time   `json:"send_time"`
	Status    EmailStatus `json:"status"`
	Content   string      `json:"content"`
	Source    string      `json:"source,omitempty"`
}

// Conversation holds every message sharing one email id, in original order.
// The first entry is the message used for single-shot processing.
type Conversation struct {
	EmailID  string        `json:"email_id"`
	Messages []EmailRecord `json:"messages"`
}
