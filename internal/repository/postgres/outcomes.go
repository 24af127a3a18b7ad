package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ekosolar/lead-pipeline/internal/domain"
)

// OutcomeRepo implements dispatch.OutcomeRepository against PostgreSQL.
type OutcomeRepo struct{ db *sql.DB }

// NewOutcomeRepo creates a Postgres-backed outcome repository.
func NewOutcomeRepo(db *sql.DB) *OutcomeRepo { return &OutcomeRepo{db: db} }

func (r *OutcomeRepo) Insert(ctx context.Context, o *domain.NotificationOutcome) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_outcomes (id, lead_id, channel, success, provider, error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.NewString(), o.LeadID, o.Channel, o.Success, o.Provider, o.Error, o.SentAt)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// ListByLead returns a lead's outcomes, newest first.
func (r *OutcomeRepo) ListByLead(ctx context.Context, leadID string) ([]domain.NotificationOutcome, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT lead_id, channel, success, provider, error, sent_at
		FROM notification_outcomes
		WHERE lead_id = $1
		ORDER BY sent_at DESC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []domain.NotificationOutcome
	for rows.Next() {
		var o domain.NotificationOutcome
		if err := rows.Scan(&o.LeadID, &o.Channel, &o.Success, &o.Provider, &o.Error, &o.SentAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
