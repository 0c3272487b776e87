package main

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Journal records handled commands. It is write-only from the bot's point
// of view: nothing read from it changes how a command is answered.
type Journal interface {
	Record(ctx context.Context, rec CommandRecord) error
	Close() error
}

////////////////////////////////////////////////////////////////////////////////
// In-memory fallback, keeps the newest records only
////////////////////////////////////////////////////////////////////////////////

const defaultMemoryJournalSize = 256

type MemoryJournal struct {
	mu      sync.Mutex
	limit   int
	records []CommandRecord
}

func NewMemoryJournal(limit int) *MemoryJournal {
	if limit <= 0 {
		limit = defaultMemoryJournalSize
	}
	return &MemoryJournal{limit: limit}
}

func (j *MemoryJournal) Record(_ context.Context, rec CommandRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	if over := len(j.records) - j.limit; over > 0 {
		j.records = append([]CommandRecord(nil), j.records[over:]...)
	}
	return nil
}

// Recent returns a copy of the stored records, oldest first.
func (j *MemoryJournal) Recent() []CommandRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]CommandRecord, len(j.records))
	copy(out, j.records)
	return out
}

func (j *MemoryJournal) Close() error { return nil }

////////////////////////////////////////////////////////////////////////////////
// Postgres implementation
////////////////////////////////////////////////////////////////////////////////

// pgExecer is the part of *pgxpool.Pool the journal uses.
type pgExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Close()
}

var _ pgExecer = (*pgxpool.Pool)(nil)

const commandLogSchema = `
CREATE TABLE IF NOT EXISTS command_log (
 id TEXT PRIMARY KEY,
 chat_id BIGINT NOT NULL,
 action TEXT NOT NULL,
 outcome TEXT NOT NULL,
 duration_ms BIGINT NOT NULL,
 handled_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const insertCommandLog = `INSERT INTO command_log (id, chat_id, action, outcome, duration_ms, handled_at)
 VALUES ($1,$2,$3,$4,$5,$6)`

type PostgresJournal struct {
	db pgExecer
}

func NewPostgresJournal(ctx context.Context, databaseURL string) (*PostgresJournal, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return newPostgresJournal(ctx, pool)
}

// newPostgresJournal creates the table if needed. db is closed on failure.
func newPostgresJournal(ctx context.Context, db pgExecer) (*PostgresJournal, error) {
	if _, err := db.Exec(ctx, commandLogSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresJournal{db: db}, nil
}

func (p *PostgresJournal) Record(ctx context.Context, rec CommandRecord) error {
	_, err := p.db.Exec(ctx, insertCommandLog,
		rec.ID, rec.ChatID, rec.Action, rec.Outcome, rec.Duration.Milliseconds(), rec.HandledAt)
	return err
}

func (p *PostgresJournal) Close() error {
	if p.db != nil {
		p.db.Close()
	}
	return nil
}
