package audit

import (
	"context"
	"database/sql"
	"fmt"

	// Postgres driver for database/sql.
	_ "github.com/lib/pq"

	"landledger/pkg/domain"
)

// PostgresStore persists the event log in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed event store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id           TEXT PRIMARY KEY,
			event_type   TEXT NOT NULL,
			occurred_at  TIMESTAMPTZ NOT NULL,
			property_id  BIGINT,
			actor        TEXT NOT NULL DEFAULT '',
			counterparty TEXT NOT NULL DEFAULT '',
			amount       BIGINT NOT NULL DEFAULT 0,
			status       TEXT NOT NULL DEFAULT '',
			detail       TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var propertyID sql.NullInt64
	if event.Property != nil {
		propertyID = sql.NullInt64{Int64: int64(*event.Property), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, event_type, occurred_at, property_id, actor, counterparty, amount, status, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, string(event.Type), event.Timestamp, propertyID,
		event.Actor.String(), event.Counterparty.String(),
		int64(event.Amount), event.Status, event.Detail,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByProperty(ctx context.Context, id domain.PropertyID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, occurred_at, property_id, actor, counterparty, amount, status, detail
		FROM audit_events
		WHERE property_id = $1
		ORDER BY occurred_at`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("list audit events by property: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) List(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, occurred_at, property_id, actor, counterparty, amount, status, detail
		FROM audit_events
		ORDER BY occurred_at`)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var (
			event        Event
			eventType    string
			propertyID   sql.NullInt64
			actor        string
			counterparty string
			amount       int64
		)
		if err := rows.Scan(&event.ID, &eventType, &event.Timestamp, &propertyID,
			&actor, &counterparty, &amount, &event.Status, &event.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Type = EventType(eventType)
		event.Actor = domain.Address(actor)
		event.Counterparty = domain.Address(counterparty)
		event.Amount = domain.Amount(amount)
		if propertyID.Valid {
			pid := domain.PropertyID(propertyID.Int64)
			event.Property = &pid
		}
		out = append(out, event)
	}
	return out, rows.Err()
}
