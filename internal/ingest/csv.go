// Package ingest loads raw support emails and pre-filters them before they
// enter the triage pipeline.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/triage"
)

// dateLayouts are tried in order when parsing the sent_date column.
var dateLayouts = []string{
	"02-01-2006 15:04",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
	"02-01-2006",
}

// Reader loads emails from CSV exports. Columns are located by header name,
// not position.
type Reader struct {
	log *zap.Logger
	now func() time.Time
}

func NewReader(log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{log: log, now: time.Now}
}

// ReadEmails reads all email rows. The required columns are sender, subject,
// body, and sent_date. Rows with too few fields are skipped with a warning;
// an unparseable date falls back to the current time rather than dropping the
// row.
func (r *Reader) ReadEmails(src io.Reader) ([]triage.Email, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, col := range header {
		cols[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"sender", "subject", "body", "sent_date"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var emails []triage.Email
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		field := func(name string) (string, bool) {
			i := cols[name]
			if i >= len(rec) {
				return "", false
			}
			return strings.TrimSpace(rec[i]), true
		}

		sender, ok1 := field("sender")
		subject, ok2 := field("subject")
		body, ok3 := field("body")
		rawDate, ok4 := field("sent_date")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			r.log.Warn("skipping short csv row",
				zap.Int("row", row),
				zap.Int("fields", len(rec)))
			continue
		}

		emails = append(emails, triage.Email{
			ID:       fmt.Sprintf("csv_%d", row),
			Sender:   sender,
			Subject:  subject,
			Body:     body,
			SentDate: r.parseDate(rawDate),
			Source:   "csv",
		})
	}
	return emails, nil
}

func (r *Reader) parseDate(raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	r.log.Warn("could not parse sent date, using current time",
		zap.String("date", raw))
	return r.now()
}
