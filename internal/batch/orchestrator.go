package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/mail-triage/internal/agent"
	"github.com/valter-silva-au/mail-triage/internal/observability"
	"github.com/valter-silva-au/mail-triage/internal/storage"
	"github.com/valter-silva-au/mail-triage/internal/stream"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// Options configure a batch run.
type Options struct {
	// Pause is the delay inserted between emails.
	Pause time.Duration
	// MaxEmails caps the run; zero means all.
	MaxEmails int
}

// Orchestrator drives the triage pipeline over a list of emails. Each
// email gets a fresh event collector; a failure on one record does not
// stop the run.
type Orchestrator struct {
	gateway agent.Gateway
	intents storage.IntentCSV
	log     observability.EventLog
	opts    Options

	sleep func(time.Duration)
	now   func() time.Time
}

// NewOrchestrator creates a batch orchestrator. The intent CSV must already
// be open; log may be nil when event logging is disabled.
func NewOrchestrator(gateway agent.Gateway, intents storage.IntentCSV, log observability.EventLog, opts Options) *Orchestrator {
	return &Orchestrator{
		gateway: gateway,
		intents: intents,
		log:     log,
		opts:    opts,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Run processes the emails in order and returns per-email results,
// aggregate statistics, and the intent map written back to the CSV.
func (o *Orchestrator) Run(ctx context.Context, emails []models.EmailRecord) (*models.BatchRun, error) {
	if o.opts.MaxEmails > 0 && o.opts.MaxEmails < len(emails) {
		emails = emails[:o.opts.MaxEmails]
	}

	o.logEvent("INFO", "batch.started", fmt.Sprintf("batch run over %d emails", len(emails)), map[string]any{
		"total": len(emails),
	})

	run := &models.BatchRun{Intents: make(map[string]string)}
	start := o.now()

	for i, email := range emails {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch run: %w", err)
		}

		result := o.processOne(ctx, email)
		run.Results = append(run.Results, result)

		if result.Status == models.BatchCompleted && result.PrimaryIntent != unknown {
			run.Intents[email.ID] = result.PrimaryIntent
		}

		if result.Status == models.BatchFailed {
			o.logEvent("WARN", "email.failed", fmt.Sprintf("email %s failed: %s", email.ID, result.Error), map[string]any{
				"email_id": email.ID,
			})
		} else {
			o.logEvent("INFO", "email.processed", fmt.Sprintf("email %s classified as %s", email.ID, result.PrimaryIntent), map[string]any{
				"email_id": email.ID,
				"intent":   result.PrimaryIntent,
			})
		}

		if o.opts.Pause > 0 && i < len(emails)-1 {
			o.sleep(o.opts.Pause)
		}
	}

	totalTime := o.now().Sub(start)

	updated := false
	updates := 0
	if len(run.Intents) > 0 {
		report, err := o.intents.UpdateIntents(run.Intents)
		if err != nil {
			o.logEvent("ERROR", "batch.writeback_failed", err.Error(), nil)
		} else {
			updated = true
			updates = report.Updated
		}
	}

	run.Statistics = computeStatistics(run.Results, totalTime)
	run.Statistics.CSVUpdated = updated
	run.Statistics.CSVUpdatesMade = updates

	o.logEvent("INFO", "batch.completed", fmt.Sprintf("batch run finished: %d completed, %d failed", run.Statistics.CompletedEmails, run.Statistics.FailedEmails), map[string]any{
		"completed": run.Statistics.CompletedEmails,
		"failed":    run.Statistics.FailedEmails,
	})

	return run, nil
}

func (o *Orchestrator) processOne(ctx context.Context, email models.EmailRecord) models.BatchResult {
	result := models.BatchResult{EmailID: email.ID, Sender: email.Sender}
	start := o.now()

	fail := func(msg string) models.BatchResult {
		result.Status = models.BatchFailed
		result.ProcessingTime = o.now().Sub(start)
		result.Error = msg
		return result
	}

	es, err := o.gateway.Process(ctx, email.Content, senderAddress(email.Sender))
	if err != nil {
		return fail(err.Error())
	}

	// Drain to natural exhaustion even after an error event, so the
	// transcript and summary reflect the whole stream; the first error
	// still fails the record.
	collector := stream.NewCollector()
	streamErr := ""
	for {
		e, ok := es.Next()
		if !ok {
			break
		}
		collector.AddEvent(e)
		if e.Kind == stream.KindError && streamErr == "" {
			streamErr = e.Err
		}
	}
	collector.MarkComplete()

	if streamErr != "" {
		return fail(streamErr)
	}

	resp, ready := collector.FinalResponse()
	if !ready || resp == stream.NoResponse {
		return fail("No AI response generated")
	}

	ex := Extract(resp)
	result.Status = models.BatchCompleted
	result.ProcessingTime = o.now().Sub(start)
	result.PrimaryIntent = ex.PrimaryIntent
	result.Confidence = ex.Confidence
	result.OrderID = ex.OrderID
	result.ResponseLength = len(resp)
	return result
}

func (o *Orchestrator) logEvent(level, typ, msg string, data map[string]any) {
	if o.log == nil {
		return
	}
	_ = o.log.Write(observability.Event{
		Time:    o.now(),
		Level:   level,
		Type:    typ,
		Message: msg,
		Data:    data,
	})
}

// senderAddress extracts the bare address from a "Name <email>" sender.
func senderAddress(sender string) string {
	if i := strings.Index(sender, "<"); i >= 0 {
		if j := strings.Index(sender, ">"); j > i {
			return sender[i+1 : j]
		}
	}
	return sender
}

func computeStatistics(results []models.BatchResult, totalTime time.Duration) models.BatchStatistics {
	stats := models.BatchStatistics{
		TotalEmails:      len(results),
		TotalTime:        totalTime,
		IntentCounts:     make(map[string]int),
		ConfidenceCounts: make(map[string]int),
	}

	var sumTime time.Duration
	var sumRespLen int
	for _, r := range results {
		sumTime += r.ProcessingTime
		switch r.Status {
		case models.BatchCompleted:
			stats.CompletedEmails++
			if r.PrimaryIntent != "" {
				stats.IntentCounts[r.PrimaryIntent]++
			}
			if r.Confidence != "" {
				stats.ConfidenceCounts[r.Confidence]++
			}
			if r.OrderID != "" {
				stats.OrdersFound++
			}
			sumRespLen += r.ResponseLength
		case models.BatchFailed:
			stats.FailedEmails++
		}
	}

	if len(results) > 0 {
		stats.SuccessRate = float64(stats.CompletedEmails) / float64(len(results)) * 100
		stats.AverageTime = sumTime / time.Duration(len(results))
	}
	if stats.CompletedEmails > 0 {
		stats.AvgResponseLength = sumRespLen / stats.CompletedEmails
	}
	return stats
}
