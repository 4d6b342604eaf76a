// Package store persists triaged emails and their draft responses in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/helpdeskhq/support-triage/internal/triage"
)

// Email statuses.
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

// EmailRecord is a stored email plus its analysis summary.
type EmailRecord struct {
	ID                  int64
	Sender              string
	Subject             string
	Body                string
	SentDate            time.Time
	Sentiment           string
	SentimentConfidence float64
	Priority            triage.Priority
	Status              string
	CreatedAt           time.Time
	HasResponse         bool
}

// ResponseRecord is a stored draft reply. Generated holds the machine output;
// Final tracks the text after human edits.
type ResponseRecord struct {
	ID        int64
	EmailID   int64
	Generated string
	Final     string
	IsSent    bool
	CreatedAt time.Time
}

// Analytics summarizes the stored emails.
type Analytics struct {
	TotalEmails      int
	ResolvedEmails   int
	PendingEmails    int
	WithResponses    int
	WithoutResponses int

	SentimentDistribution map[string]int
	PriorityDistribution  map[string]int
}

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS emails (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		sent_date DATETIME NOT NULL,
		sentiment TEXT,
		sentiment_confidence REAL,
		priority TEXT,
		status TEXT DEFAULT 'pending',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_emails_sender ON emails(sender);
	CREATE INDEX IF NOT EXISTS idx_emails_status ON emails(status);
	CREATE INDEX IF NOT EXISTS idx_emails_priority ON emails(priority);

	CREATE TABLE IF NOT EXISTS responses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email_id INTEGER NOT NULL,
		generated_response TEXT NOT NULL,
		final_response TEXT,
		is_sent INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_responses_email_id ON responses(email_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// InsertEmail stores an analyzed email. An email with the same sender and
// subject is treated as a duplicate and skipped; the second return reports
// whether a row was inserted.
func (s *Store) InsertEmail(ctx context.Context, email triage.Email, analysis triage.Analysis) (int64, bool, error) {
	var existing int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM emails WHERE sender = ? AND subject = ? LIMIT 1`,
		email.Sender, email.Subject).Scan(&existing)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("check duplicate: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO emails (sender, subject, body, sent_date, sentiment, sentiment_confidence, priority, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		email.Sender,
		email.Subject,
		email.Body,
		email.SentDate,
		analysis.Sentiment.Label,
		analysis.Sentiment.Confidence,
		string(analysis.Priority),
		StatusPending,
		time.Now(),
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert email: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("last insert id: %w", err)
	}
	return id, true, nil
}

// ListEmails returns all emails in triage order: priority first, newest
// within a priority.
func (s *Store) ListEmails(ctx context.Context) ([]EmailRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.sender, e.subject, e.body, e.sent_date,
		       e.sentiment, e.sentiment_confidence, e.priority, e.status, e.created_at,
		       EXISTS (SELECT 1 FROM responses r WHERE r.email_id = e.id)
		FROM emails e
		ORDER BY CASE e.priority
			WHEN 'Urgent' THEN 1
			WHEN 'High' THEN 2
			WHEN 'Normal' THEN 3
			WHEN 'Low' THEN 4
			ELSE 5
		END ASC, e.sent_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	defer rows.Close()

	var out []EmailRecord
	for rows.Next() {
		rec, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// GetEmail returns one email, or nil when it does not exist.
func (s *Store) GetEmail(ctx context.Context, id int64) (*EmailRecord, error) {
	rec, err := scanEmail(s.db.QueryRowContext(ctx, `
		SELECT e.id, e.sender, e.subject, e.body, e.sent_date,
		       e.sentiment, e.sentiment_confidence, e.priority, e.status, e.created_at,
		       EXISTS (SELECT 1 FROM responses r WHERE r.email_id = e.id)
		FROM emails e WHERE e.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get email: %w", err)
	}
	return rec, nil
}

// Resolve marks an email resolved.
func (s *Store) Resolve(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE emails SET status = ? WHERE id = ?`, StatusResolved, id)
	if err != nil {
		return fmt.Errorf("resolve email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve email: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("email %d not found", id)
	}
	return nil
}

// SaveResponse stores a draft for an email, replacing any existing draft.
// Both the generated and final texts are set; later edits touch only Final.
func (s *Store) SaveResponse(ctx context.Context, emailID int64, text string) error {
	var existing int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM responses WHERE email_id = ? LIMIT 1`, emailID).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO responses (email_id, generated_response, final_response, is_sent, created_at)
			VALUES (?, ?, ?, 0, ?)`,
			emailID, text, text, time.Now())
	case err == nil:
		_, err = s.db.ExecContext(ctx, `
			UPDATE responses SET generated_response = ?, final_response = ? WHERE id = ?`,
			text, text, existing)
	}
	if err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}

// GetResponse returns the draft for an email, or nil when none exists.
func (s *Store) GetResponse(ctx context.Context, emailID int64) (*ResponseRecord, error) {
	var r ResponseRecord
	var final sql.NullString
	var createdAt sql.NullTime
	var isSent int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email_id, generated_response, final_response, is_sent, created_at
		FROM responses WHERE email_id = ? LIMIT 1`, emailID).
		Scan(&r.ID, &r.EmailID, &r.Generated, &final, &isSent, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get response: %w", err)
	}
	r.Final = final.String
	r.CreatedAt = createdAt.Time
	r.IsSent = isSent != 0
	return &r, nil
}

// MarkSent records the final text and, when send is true, flags the response
// sent and resolves the email. With send false it only saves the edited
// draft.
func (s *Store) MarkSent(ctx context.Context, emailID int64, finalText string, send bool) error {
	sent := 0
	if send {
		sent = 1
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE responses SET final_response = ?, is_sent = ? WHERE email_id = ?`,
		finalText, sent, emailID)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no response for email %d", emailID)
	}
	if send {
		return s.Resolve(ctx, emailID)
	}
	return nil
}

// Stats computes the analytics summary.
func (s *Store) Stats(ctx context.Context) (Analytics, error) {
	a := Analytics{
		SentimentDistribution: map[string]int{},
		PriorityDistribution:  map[string]int{},
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(EXISTS (SELECT 1 FROM responses r WHERE r.email_id = emails.id)), 0)
		FROM emails`)
	if err := row.Scan(&a.TotalEmails, &a.ResolvedEmails, &a.WithResponses); err != nil {
		return a, fmt.Errorf("count emails: %w", err)
	}
	a.PendingEmails = a.TotalEmails - a.ResolvedEmails
	a.WithoutResponses = a.TotalEmails - a.WithResponses

	if err := s.countBy(ctx, "sentiment", a.SentimentDistribution); err != nil {
		return a, err
	}
	if err := s.countBy(ctx, "priority", a.PriorityDistribution); err != nil {
		return a, err
	}
	return a, nil
}

func (s *Store) countBy(ctx context.Context, column string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s, COUNT(*) FROM emails GROUP BY %s`, column, column))
	if err != nil {
		return fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key sql.NullString
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		into[key.String] = n
	}
	return rows.Err()
}

// scanEmail handles nullable columns when scanning a row.
func scanEmail(scanner interface{ Scan(...any) error }) (*EmailRecord, error) {
	var r EmailRecord
	var sentiment, priority, status sql.NullString
	var confidence sql.NullFloat64
	var sentDate, createdAt sql.NullTime
	var hasResponse int

	err := scanner.Scan(&r.ID, &r.Sender, &r.Subject, &r.Body, &sentDate,
		&sentiment, &confidence, &priority, &status, &createdAt, &hasResponse)
	if err != nil {
		return nil, err
	}

	r.SentDate = sentDate.Time
	r.Sentiment = sentiment.String
	r.SentimentConfidence = confidence.Float64
	r.Priority = triage.Priority(priority.String)
	r.Status = status.String
	r.CreatedAt = createdAt.Time
	r.HasResponse = hasResponse != 0
	return &r, nil
}
