package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/miin000/minisocial-admin/internal/metrics"
)

// AuditEntry records one administrative action taken through the dashboard.
type AuditEntry struct {
	ID        uuid.UUID
	Actor     string
	Action    string
	Target    string
	Detail    string
	CreatedAt time.Time
}

// AuditRepository persists the audit trail of admin actions.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{pool: db.Pool}
}

// Record inserts a new audit entry. The ID and timestamp are assigned here.
func (r *AuditRepository) Record(ctx context.Context, actor, action, target, detail string) error {
	query := `
		INSERT INTO audit_log (id, actor, action, target, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, uuid.New(), actor, action, target, detail, time.Now().UTC())
	if err != nil {
		metrics.AuditEntriesTotal.WithLabelValues(action, "error").Inc()
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	metrics.AuditEntriesTotal.WithLabelValues(action, "ok").Inc()
	return nil
}

// ListRecent returns the newest entries, capped at limit.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, actor, action, target, detail, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Target, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}
