package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Postgres error codes mapped to store sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

const (
	eventColumns  = `id, name, active, created_at`
	resultColumns = `id, event_id, runner_name, house, "time", created_at`
)

// PostgresStore is a Store backed by database/sql and lib/pq.
type PostgresStore struct {
	settings
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB, opts ...Option) *PostgresStore {
	s := &PostgresStore{settings: defaultSettings(), db: db}
	for _, opt := range opts {
		opt(&s.settings)
	}
	return s
}

// OpenPostgres connects to dsn, verifies the connection and applies the schema.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPostgresStore(db, opts...)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies the embedded schema. It is safe to run repeatedly.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	s.logger.Info(ctx, "postgres schema applied")
	return nil
}

func (s *PostgresStore) ListEvents(ctx context.Context) (out []model.Event, err error) {
	defer func(start time.Time) { observe("list_events", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out = []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Active, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ActiveEvent(ctx context.Context) (e model.Event, err error) {
	defer func(start time.Time) { observe("active_event", start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE active LIMIT 1`)
	if err := row.Scan(&e.ID, &e.Name, &e.Active, &e.CreatedAt); err != nil {
		return model.Event{}, fmt.Errorf("active event: %w", translate(err))
	}
	return e, nil
}

func (s *PostgresStore) GetEvent(ctx context.Context, id string) (e model.Event, err error) {
	defer func(start time.Time) { observe("get_event", start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	if err := row.Scan(&e.ID, &e.Name, &e.Active, &e.CreatedAt); err != nil {
		return model.Event{}, fmt.Errorf("event %s: %w", id, translate(err))
	}
	return e, nil
}

func (s *PostgresStore) InsertEvent(ctx context.Context, e model.Event) (_ model.Event, err error) {
	defer func(start time.Time) { observe("insert_event", start, err) }(time.Now())

	e.ID = s.newID()
	e.CreatedAt = s.now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES ($1, $2, $3, $4)`,
		e.ID, e.Name, e.Active, e.CreatedAt)
	if err != nil {
		return model.Event{}, fmt.Errorf("insert event: %w", translate(err))
	}
	return e, nil
}

func (s *PostgresStore) DeactivateAll(ctx context.Context) (ids []string, err error) {
	defer func(start time.Time) { observe("deactivate_all", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx,
		`UPDATE events SET active = FALSE WHERE active RETURNING id`)
	if err != nil {
		return nil, fmt.Errorf("deactivate events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan event id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("deactivate events: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) DeactivateEvent(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("deactivate_event", start, err) }(time.Now())

	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate event %s: %w", id, translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate event %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) InsertResult(ctx context.Context, r model.Result) (_ model.Result, err error) {
	defer func(start time.Time) { observe("insert_result", start, err) }(time.Now())

	r.ID = s.newID()
	r.CreatedAt = s.now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (`+resultColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.EventID, r.RunnerName, string(r.House), r.Time, r.CreatedAt)
	if err != nil {
		return model.Result{}, fmt.Errorf("insert result: %w", translate(err))
	}
	return r, nil
}

func (s *PostgresStore) DeleteResult(ctx context.Context, id string) (r model.Result, _ bool, err error) {
	defer func(start time.Time) { observe("delete_result", start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx,
		`DELETE FROM results WHERE id = $1 RETURNING `+resultColumns, id)
	err = scanResult(row, &r)
	switch {
	case err == nil:
		return r, true, nil
	case errors.Is(translate(err), ErrNotFound):
		return model.Result{}, false, nil
	}
	return model.Result{}, false, fmt.Errorf("delete result %s: %w", id, err)
}

func (s *PostgresStore) ListResults(ctx context.Context, eventID string) (out []model.Result, err error) {
	defer func(start time.Time) { observe("list_results", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM results WHERE event_id = $1 ORDER BY seq`, eventID)
	if err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			return []model.Result{}, nil
		}
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	out = []model.Result{}
	for rows.Next() {
		var r model.Result
		if err := scanResult(rows, &r); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return out, nil
}

// DB exposes the handle so a change feed can share the pool.
func (s *PostgresStore) DB() *sql.DB { return s.db }

// Close closes the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(sc scanner, r *model.Result) error {
	var house string
	if err := sc.Scan(&r.ID, &r.EventID, &r.RunnerName, &house, &r.Time, &r.CreatedAt); err != nil {
		return err
	}
	r.House = model.House(house)
	return nil
}

// translate maps driver errors onto store sentinels, keeping the cause.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case pgForeignKeyViolation, pgInvalidText:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}
	return err
}
