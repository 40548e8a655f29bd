package models

import "time"

// BatchStatus is the per-email outcome of a batch run.
type BatchStatus string

const (
	BatchCompleted BatchStatus = "completed"
	BatchFailed    BatchStatus = "failed"
)

// BatchResult records the outcome of processing one email in a batch run.
type BatchResult struct {
	EmailID        string        `json:"email_id"`
	Sender         string        `json:"sender"`
	Status         BatchStatus   `json:"status"`
	ProcessingTime time.Duration `json:"processing_time"`
	PrimaryIntent  string        `json:"primary_intent,omitempty"`
	Confidence     string        `json:"confidence,omitempty"`
	OrderID        string        `json:"order_id,omitempty"`
	ResponseLength int           `json:"response_length,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// BatchStatistics aggregates a batch run. Intent and confidence histograms
// cover completed records only; average processing time covers all records
// including failures.
type BatchStatistics struct {
	TotalEmails       int            `json:"total_emails"`
	CompletedEmails   int            `json:"completed_emails"`
	FailedEmails      int            `json:"failed_emails"`
	SuccessRate       float64        `json:"success_rate"`
	TotalTime         time.Duration  `json:"total_processing_time"`
	AverageTime       time.Duration  `json:"average_processing_time"`
	IntentCounts      map[string]int `json:"intent_distribution"`
	ConfidenceCounts  map[string]int `json:"confidence_distribution"`
	OrdersFound       int            `json:"orders_found"`
	AvgResponseLength int            `json:"average_response_length"`
	CSVUpdated        bool           `json:"csv_updated"`
	CSVUpdatesMade    int            `json:"csv_updates_made"`
}

// BatchRun bundles per-email results with aggregate statistics and the
// intent map used for write-back.
type BatchRun struct {
	Results    []BatchResult     `json:"results"`
	Statistics BatchStatistics   `json:"statistics"`
	Intents    map[string]string `json:"intent_results"`
}
