package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/trendcast/internal/types"
)

const configurationColumns = `id, user_id, workspace_id, source_type, name, description,
	parameters, auto_run_enabled, is_active, created_at, updated_at, last_run_at`

func scanConfiguration(row pgx.Row) (*types.Configuration, error) {
	var c types.Configuration
	var description *string
	var parametersJSON []byte

	err := row.Scan(&c.ID, &c.UserID, &c.WorkspaceID, &c.SourceType, &c.Name, &description,
		&parametersJSON, &c.AutoRunEnabled, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.LastRunAt)
	if err != nil {
		return nil, err
	}
	if description != nil {
		c.Description = *description
	}
	if parametersJSON != nil {
		_ = json.Unmarshal(parametersJSON, &c.Parameters)
	}
	return &c, nil
}

// CreateConfiguration inserts a new configuration and returns it with
// server-set fields populated.
func (db *DB) CreateConfiguration(ctx context.Context, c *types.Configuration) (*types.Configuration, error) {
	parametersJSON, err := json.Marshal(c.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO configurations (user_id, workspace_id, source_type, name, description,
		                             parameters, auto_run_enabled, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		 RETURNING `+configurationColumns,
		c.UserID, c.WorkspaceID, c.SourceType, c.Name, c.Description, parametersJSON, c.AutoRunEnabled,
	)
	created, err := scanConfiguration(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create configuration: %w", err)
	}
	return created, nil
}

// GetConfiguration retrieves a configuration by ID. Returns nil if not found.
func (db *DB) GetConfiguration(ctx context.Context, id uuid.UUID) (*types.Configuration, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+configurationColumns+` FROM configurations WHERE id = $1`, id)
	c, err := scanConfiguration(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	return c, nil
}

// ListConfigurations retrieves a user's configurations, active only unless
// includeInactive is set.
func (db *DB) ListConfigurations(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]types.Configuration, error) {
	query := `SELECT ` + configurationColumns + ` FROM configurations WHERE user_id = $1`
	if !includeInactive {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	defer rows.Close()

	var configs []types.Configuration
	for rows.Next() {
		c, err := scanConfiguration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan configuration: %w", err)
		}
		configs = append(configs, *c)
	}
	return configs, nil
}

// UpdateConfiguration applies a partial update. source_type is immutable and
// deliberately not updatable here.
func (db *DB) UpdateConfiguration(ctx context.Context, id uuid.UUID, upd types.ConfigurationUpdate) (*types.Configuration, error) {
	var parametersJSON []byte
	if upd.Parameters != nil {
		var err error
		parametersJSON, err = json.Marshal(upd.Parameters)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal parameters: %w", err)
		}
	}

	row := db.pool.QueryRow(ctx,
		`UPDATE configurations
		 SET name = COALESCE($1, name),
		     description = COALESCE($2, description),
		     parameters = COALESCE($3, parameters),
		     auto_run_enabled = COALESCE($4, auto_run_enabled),
		     updated_at = NOW()
		 WHERE id = $5
		 RETURNING `+configurationColumns,
		upd.Name, upd.Description, parametersJSON, upd.AutoRunEnabled, id,
	)
	c, err := scanConfiguration(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update configuration: %w", err)
	}
	return c, nil
}

// DeactivateConfiguration soft-deletes a configuration. Rows are never
// physically removed while jobs reference them.
func (db *DB) DeactivateConfiguration(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE configurations SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate configuration: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("configuration not found: %s", id)
	}
	return nil
}

// CountActiveConfigurations counts a user's active configurations for quota
// enforcement.
func (db *DB) CountActiveConfigurations(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM configurations WHERE user_id = $1 AND is_active = TRUE`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count configurations: %w", err)
	}
	return count, nil
}

// TouchConfigurationLastRun records that a job derived from this
// configuration completed. Concurrent completions are last-writer-wins.
func (db *DB) TouchConfigurationLastRun(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE configurations SET last_run_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last_run_at: %w", err)
	}
	return nil
}
