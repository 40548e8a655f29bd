// Package observability provides event logging and metrics for the
// mail-triage system. It uses structured JSON Lines (JSONL) for event
// persistence and derives metrics on-demand from the event log.
package observability
