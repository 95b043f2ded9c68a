package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/esnunes/featurechat/internal/interview"
	"github.com/esnunes/featurechat/internal/models"
)

const idPrefix = "f"

type Queries struct {
	db *sql.DB
}

var _ interview.Store = (*Queries)(nil)

func NewQueries(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Discussions

func (q *Queries) Create(ctx context.Context, title, cursor string, now time.Time) (*models.Discussion, *models.Context, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating discussion: %w", err)
	}
	defer tx.Rollback()

	ts := formatTime(now)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO discussions (title, status, current_prompt, answers, created_at, updated_at)
		 VALUES (?, ?, ?, '{}', ?, ?)`,
		title, string(models.StatusInDiscussion), cursor, ts, ts,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating discussion: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("creating discussion: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO discussion_contexts (discussion_id) VALUES (?)`, rowID,
	); err != nil {
		return nil, nil, fmt.Errorf("creating discussion context: %w", err)
	}

	d, c, err := load(ctx, tx, rowID)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("creating discussion: %w", err)
	}
	return d, c, nil
}

func (q *Queries) Get(ctx context.Context, id string) (*models.Discussion, *models.Context, error) {
	rowID, err := parseID(id)
	if err != nil {
		return nil, nil, err
	}
	return load(ctx, q.db, rowID)
}

func (q *Queries) List(ctx context.Context) ([]*models.Discussion, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, title, status, current_prompt, answers, created_at, updated_at
		 FROM discussions ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing discussions: %w", err)
	}
	defer rows.Close()

	var results []*models.Discussion
	for rows.Next() {
		d, err := scanDiscussion(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

func (q *Queries) Update(ctx context.Context, id string, fn func(*models.Discussion, *models.Context) error) error {
	rowID, err := parseID(id)
	if err != nil {
		return err
	}

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("updating discussion: %w", err)
	}
	defer tx.Rollback()

	d, c, err := load(ctx, tx, rowID)
	if err != nil {
		return err
	}
	seen := len(c.ConversationHistory)

	if err := fn(d, c); err != nil {
		return err
	}
	if len(c.ConversationHistory) < seen {
		return fmt.Errorf("discussion %s: conversation history is append-only", id)
	}

	answers, err := json.Marshal(d.Answers)
	if err != nil {
		return fmt.Errorf("encoding answers: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE discussions SET status = ?, current_prompt = ?, answers = ?, updated_at = ? WHERE id = ?`,
		string(d.Status), d.CurrentPrompt, string(answers), formatTime(d.UpdatedAt), rowID,
	); err != nil {
		return fmt.Errorf("updating discussion: %w", err)
	}
	if err := saveContext(ctx, tx, rowID, c); err != nil {
		return err
	}
	for _, x := range c.ConversationHistory[seen:] {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exchanges (discussion_id, prompt, response, created_at) VALUES (?, ?, ?, ?)`,
			rowID, x.Prompt, x.Response, formatTime(x.Timestamp),
		); err != nil {
			return fmt.Errorf("appending exchange: %w", err)
		}
	}
	return tx.Commit()
}

// Helpers

func load(ctx context.Context, q queryer, rowID int64) (*models.Discussion, *models.Context, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, title, status, current_prompt, answers, created_at, updated_at
		 FROM discussions WHERE id = ?`, rowID,
	)
	d, err := scanDiscussion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("discussion %s%d: %w", idPrefix, rowID, interview.ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	c, err := loadContext(ctx, q, rowID)
	if err != nil {
		return nil, nil, err
	}
	return d, c, nil
}

func loadContext(ctx context.Context, q queryer, rowID int64) (*models.Context, error) {
	var decisions, features, constraints string
	err := q.QueryRowContext(ctx,
		`SELECT previous_decisions, related_features, technical_constraints
		 FROM discussion_contexts WHERE discussion_id = ?`, rowID,
	).Scan(&decisions, &features, &constraints)
	if err != nil {
		return nil, fmt.Errorf("getting discussion context: %w", err)
	}

	c := models.NewContext()
	for _, f := range []struct {
		raw string
		dst *[]string
	}{
		{decisions, &c.PreviousDecisions},
		{features, &c.RelatedFeatures},
		{constraints, &c.TechnicalConstraints},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("decoding discussion context: %w", err)
		}
		if *f.dst == nil {
			*f.dst = []string{}
		}
	}

	rows, err := q.QueryContext(ctx,
		`SELECT prompt, response, created_at FROM exchanges
		 WHERE discussion_id = ? ORDER BY id ASC`, rowID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var x models.Exchange
		var createdAt string
		if err := rows.Scan(&x.Prompt, &x.Response, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		if x.Timestamp, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		c.ConversationHistory = append(c.ConversationHistory, x)
	}
	return c, rows.Err()
}

func saveContext(ctx context.Context, q queryer, rowID int64, c *models.Context) error {
	enc := func(s []string) string {
		if s == nil {
			return "[]"
		}
		b, _ := json.Marshal(s)
		return string(b)
	}
	_, err := q.ExecContext(ctx,
		`UPDATE discussion_contexts
		 SET previous_decisions = ?, related_features = ?, technical_constraints = ?
		 WHERE discussion_id = ?`,
		enc(c.PreviousDecisions), enc(c.RelatedFeatures), enc(c.TechnicalConstraints), rowID,
	)
	if err != nil {
		return fmt.Errorf("updating discussion context: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDiscussion(s scanner) (*models.Discussion, error) {
	d := &models.Discussion{}
	var rowID int64
	var status, answers, createdAt, updatedAt string
	if err := s.Scan(&rowID, &d.Title, &status, &d.CurrentPrompt, &answers, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning discussion: %w", err)
	}
	d.ID = idPrefix + strconv.FormatInt(rowID, 10)
	d.Status = models.Status(status)
	if err := json.Unmarshal([]byte(answers), &d.Answers); err != nil {
		return nil, fmt.Errorf("decoding answers: %w", err)
	}
	var err error
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("scanning discussion: %w", err)
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("scanning discussion: %w", err)
	}
	return d, nil
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, idPrefix), 10, 64)
	if err != nil || n <= 0 || idPrefix+strconv.FormatInt(n, 10) != id {
		return 0, fmt.Errorf("discussion %s: %w", id, interview.ErrNotFound)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
