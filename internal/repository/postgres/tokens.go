package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// DeviceTokenRepo stores admin push device tokens. It satisfies
// notify.DeviceTokenSource.
type DeviceTokenRepo struct{ db *sql.DB }

// NewDeviceTokenRepo creates a Postgres-backed device token repository.
func NewDeviceTokenRepo(db *sql.DB) *DeviceTokenRepo { return &DeviceTokenRepo{db: db} }

// Register stores a device token. Re-registering an existing token
// refreshes its timestamp.
func (r *DeviceTokenRepo) Register(ctx context.Context, token, platform string) error {
	if token == "" {
		return fmt.Errorf("device token is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO device_tokens (token, platform, registered_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (token) DO UPDATE SET platform = $2, registered_at = NOW()
	`, token, platform)
	if err != nil {
		return fmt.Errorf("register device token: %w", err)
	}
	return nil
}

// Tokens returns every registered device token.
func (r *DeviceTokenRepo) Tokens(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT token FROM device_tokens ORDER BY registered_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		out = append(out, token)
	}
	return out, rows.Err()
}
