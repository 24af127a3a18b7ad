// Package postgres implements the repository interfaces against
// PostgreSQL using database/sql and the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ekosolar/lead-pipeline/internal/domain"
	"github.com/ekosolar/lead-pipeline/internal/service/dispatch"
)

// LeadRepo implements dispatch.LeadRepository against PostgreSQL.
type LeadRepo struct{ db *sql.DB }

// NewLeadRepo creates a Postgres-backed lead repository.
func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{db: db} }

func (r *LeadRepo) Insert(ctx context.Context, lead *domain.Lead) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (id, name, email, phone, address, message, electric_bill, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, lead.ID, lead.Name, lead.Email, lead.Phone, lead.Address, lead.Message, lead.ElectricBill, lead.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepo) Get(ctx context.Context, id string) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, address, message, electric_bill, submitted_at
		FROM leads WHERE id = $1
	`, id).Scan(&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Address, &lead.Message, &lead.ElectricBill, &lead.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dispatch.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &lead, nil
}
