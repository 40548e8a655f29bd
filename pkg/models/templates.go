package models

// DocumentTemplate is a fill-in template for customer document requests
// (commercial invoice, COC, packing list).
type DocumentTemplate struct {
	DocType string `json:"doc_type" yaml:"doc_type"`
	Name    string `json:"name" yaml:"name"`
	Body    string `json:"body" yaml:"body"`
}

// InquiryTemplate is a canned reply for a general-inquiry topic, matched by
// keyword against the email content.
type InquiryTemplate struct {
	Topic    string   `json:"topic" yaml:"topic"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Reply    string   `json:"reply" yaml:"reply"`
}
