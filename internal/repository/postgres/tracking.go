package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ekosolar/lead-pipeline/internal/domain"
)

// TrackingRepo implements tracking.Repository against PostgreSQL.
type TrackingRepo struct{ db *sql.DB }

// NewTrackingRepo creates a Postgres-backed tracking event repository.
func NewTrackingRepo(db *sql.DB) *TrackingRepo { return &TrackingRepo{db: db} }

func (r *TrackingRepo) Insert(ctx context.Context, evt *domain.TrackingEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tracking_events (id, tracking_id, kind, lead_id, link_name, user_agent, ip_address, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.NewString(), evt.TrackingID, evt.Kind, evt.LeadID, evt.LinkName, evt.UserAgent, evt.IPAddress, evt.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert tracking event: %w", err)
	}
	return nil
}

func (r *TrackingRepo) ListByLead(ctx context.Context, leadID string) ([]domain.TrackingEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tracking_id, kind, lead_id, link_name, user_agent, ip_address, occurred_at
		FROM tracking_events
		WHERE lead_id = $1
		ORDER BY occurred_at DESC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list tracking events: %w", err)
	}
	defer rows.Close()

	var out []domain.TrackingEvent
	for rows.Next() {
		var evt domain.TrackingEvent
		if err := rows.Scan(&evt.TrackingID, &evt.Kind, &evt.LeadID, &evt.LinkName, &evt.UserAgent, &evt.IPAddress, &evt.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan tracking event: %w", err)
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}
