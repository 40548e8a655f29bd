package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// Column names in the intent CSV.
const (
	colEmailID      = "email-id"
	colConverseTime = "converse-time"
	colSender       = "sender"
	colReceiver     = "receiver"
	colContent      = "email-content"
	colAICateg      = "ai-categ"
)

var converseTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/1/2 15:04",
	"2006-01-02",
}

// IntentStats summarizes the intent CSV contents.
type IntentStats struct {
	TotalRows     int
	UniqueEmails  int
	UniqueSenders int
	Classified    int
}

// UpdateReport accounts for an intent write-back.
type UpdateReport struct {
	Updated    int
	NotFound   []string
	BackupPath string
}

// IntentCSV manages the email intent classification table. Rows are grouped
// by email id; one email id may span several conversation rows.
type IntentCSV interface {
	EmailIDs() []string
	FirstByID(emailID string) (models.EmailRecord, bool)
	Conversation(emailID string) (models.Conversation, bool)
	Search(term string) []models.EmailRecord
	Stats() IntentStats
	UpdateIntents(intents map[string]string) (UpdateReport, error)
}

type intentCSV struct {
	path   string
	header []string
	col    map[string]int
	rows   [][]string
	order  []string
	byID   map[string][]int
	now    func() time.Time
}

// OpenIntentCSV reads the intent CSV from disk. The file must exist and
// carry at least the email-id column.
func OpenIntentCSV(path string) (IntentCSV, error) {
	return openIntentCSV(path, time.Now)
}

func openIntentCSV(path string, now func() time.Time) (*intentCSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening intent csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing intent csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("intent csv %s is empty", path)
	}

	header := records[0]
	// Some exports carry a UTF-8 BOM on the first header cell.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col[colEmailID]; !ok {
		return nil, fmt.Errorf("intent csv %s has no %s column", path, colEmailID)
	}

	c := &intentCSV{
		path:   path,
		header: header,
		col:    col,
		rows:   records[1:],
		byID:   make(map[string][]int),
		now:    now,
	}
	for i, row := range c.rows {
		id := c.field(row, colEmailID)
		if id == "" {
			continue
		}
		if _, seen := c.byID[id]; !seen {
			c.order = append(c.order, id)
		}
		c.byID[id] = append(c.byID[id], i)
	}
	return c, nil
}

func (c *intentCSV) field(row []string, name string) string {
	i, ok := c.col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// EmailIDs returns the unique email ids in first-appearance order.
func (c *intentCSV) EmailIDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// FirstByID returns the first row for an email id as a record. That row is
// the message used for single-shot processing.
func (c *intentCSV) FirstByID(emailID string) (models.EmailRecord, bool) {
	idxs, ok := c.byID[emailID]
	if !ok || len(idxs) == 0 {
		return models.EmailRecord{}, false
	}
	return c.record(c.rows[idxs[0]]), true
}

// Conversation returns every row sharing the email id, in file order.
func (c *intentCSV) Conversation(emailID string) (models.Conversation, bool) {
	idxs, ok := c.byID[emailID]
	if !ok {
		return models.Conversation{}, false
	}
	conv := models.Conversation{EmailID: emailID}
	for _, i := range idxs {
		conv.Messages = append(conv.Messages, c.record(c.rows[i]))
	}
	return conv, true
}

// Search returns the rows whose sender, receiver, or content contains the
// term, case-insensitively.
func (c *intentCSV) Search(term string) []models.EmailRecord {
	term = strings.ToLower(term)
	var out []models.EmailRecord
	for _, row := range c.rows {
		for _, name := range []string{colSender, colReceiver, colContent} {
			if strings.Contains(strings.ToLower(c.field(row, name)), term) {
				out = append(out, c.record(row))
				break
			}
		}
	}
	return out
}

func (c *intentCSV) Stats() IntentStats {
	senders := make(map[string]struct{})
	classified := 0
	for _, row := range c.rows {
		if s := c.field(row, colSender); s != "" {
			senders[s] = struct{}{}
		}
		if c.field(row, colAICateg) != "" {
			classified++
		}
	}
	return IntentStats{
		TotalRows:     len(c.rows),
		UniqueEmails:  len(c.byID),
		UniqueSenders: len(senders),
		Classified:    classified,
	}
}

// UpdateIntents writes the classifications into the ai-categ column and
// saves the file. A timestamped backup of the pre-update file is written
// first; the column is added when missing. Every row sharing an email id
// receives that id's intent.
func (c *intentCSV) UpdateIntents(intents map[string]string) (UpdateReport, error) {
	backupPath, err := c.backup()
	if err != nil {
		return UpdateReport{}, err
	}
	report := UpdateReport{BackupPath: backupPath}

	categIdx, ok := c.col[colAICateg]
	if !ok {
		categIdx = len(c.header)
		c.header = append(c.header, colAICateg)
		c.col[colAICateg] = categIdx
	}

	ids := make([]string, 0, len(intents))
	for id := range intents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		idxs, found := c.byID[id]
		if !found {
			report.NotFound = append(report.NotFound, id)
			continue
		}
		for _, i := range idxs {
			for len(c.rows[i]) <= categIdx {
				c.rows[i] = append(c.rows[i], "")
			}
			c.rows[i][categIdx] = intents[id]
			report.Updated++
		}
	}

	if err := c.save(); err != nil {
		return report, err
	}
	return report, nil
}

func (c *intentCSV) backup() (string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return "", fmt.Errorf("reading intent csv for backup: %w", err)
	}
	stamp := c.now().Format("20060102_150405")
	backupPath := strings.TrimSuffix(c.path, ".csv") + "_backup_" + stamp + ".csv"
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing intent csv backup: %w", err)
	}
	return backupPath, nil
}

func (c *intentCSV) save() error {
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("writing intent csv: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(c.header); err != nil {
		f.Close()
		return fmt.Errorf("writing intent csv header: %w", err)
	}
	width := len(c.header)
	for _, row := range c.rows {
		for len(row) < width {
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("writing intent csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing intent csv: %w", err)
	}
	return f.Close()
}

func (c *intentCSV) record(row []string) models.EmailRecord {
	return models.EmailRecord{
		ID:        c.field(row, colEmailID),
		Sender:    c.field(row, colSender),
		Recipient: c.field(row, colReceiver),
		SendTime:  parseConverseTime(c.field(row, colConverseTime)),
		Status:    models.EmailPending,
		Content:   c.field(row, colContent),
		Source:    c.path,
	}
}

func parseConverseTime(s string) time.Time {
	for _, layout := range converseTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
