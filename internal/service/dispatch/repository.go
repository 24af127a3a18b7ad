package dispatch

import (
	"context"

	"github.com/ekosolar/lead-pipeline/internal/domain"
)

// LeadRepository defines the data access contract for leads.
type LeadRepository interface {
	// Insert stores a new lead. Lead IDs are assigned by the service.
	Insert(ctx context.Context, lead *domain.Lead) error

	// Get returns a lead by ID.
	Get(ctx context.Context, id string) (*domain.Lead, error)
}

// OutcomeRepository stores per-channel notification outcomes.
type OutcomeRepository interface {
	// Insert stores one outcome record.
	Insert(ctx context.Context, outcome *domain.NotificationOutcome) error
}
