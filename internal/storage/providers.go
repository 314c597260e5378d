package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/findosh/slideomni/internal/models"
)

// ProviderRepository stores provider configurations in llm_providers
type ProviderRepository struct {
	db *DB
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db *DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

var _ Providers = (*ProviderRepository)(nil)

const providerColumns = `id, provider, api_key, base_url, model, azure_endpoint, azure_deployment_name, azure_api_version, is_active, created_at, updated_at`

// List returns every stored provider
func (r *ProviderRepository) List(ctx context.Context) ([]*models.ProviderRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+providerColumns+` FROM llm_providers ORDER BY provider`)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer rows.Close()

	var out []*models.ProviderRecord
	for rows.Next() {
		rec, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns the record for kind
func (r *ProviderRepository) Get(ctx context.Context, kind models.ProviderKind) (*models.ProviderRecord, error) {
	return scanProvider(r.db.QueryRowContext(ctx,
		`SELECT `+providerColumns+` FROM llm_providers WHERE provider = ?`, string(kind)))
}

// Active returns the active record or ErrNotFound
func (r *ProviderRepository) Active(ctx context.Context) (*models.ProviderRecord, error) {
	return scanProvider(r.db.QueryRowContext(ctx,
		`SELECT `+providerColumns+` FROM llm_providers WHERE is_active = 1 LIMIT 1`))
}

// Upsert inserts or replaces the configuration for cfg.Kind(), keeping its active flag
func (r *ProviderRepository) Upsert(ctx context.Context, cfg models.ProviderConfig) (*models.ProviderRecord, error) {
	var f providerFields
	f.fromConfig(cfg)
	now := time.Now().UTC()

	query := `
		INSERT INTO llm_providers (provider, api_key, base_url, model, azure_endpoint, azure_deployment_name, azure_api_version, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			api_key = excluded.api_key,
			base_url = excluded.base_url,
			model = excluded.model,
			azure_endpoint = excluded.azure_endpoint,
			azure_deployment_name = excluded.azure_deployment_name,
			azure_api_version = excluded.azure_api_version,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		string(cfg.Kind()), f.apiKey, f.baseURL, f.model, f.endpoint, f.deployment, f.apiVersion, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save provider: %w", err)
	}
	return r.Get(ctx, cfg.Kind())
}

// SetActive deactivates every record and activates kind in one transaction.
// An unknown kind rolls back and leaves the previous active record in place.
func (r *ProviderRepository) SetActive(ctx context.Context, kind models.ProviderKind) error {
	return WithTx(ctx, r.db.DB, nil, func(ctx context.Context, tx DBTX) error {
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx,
			`UPDATE llm_providers SET is_active = 0, updated_at = ? WHERE is_active = 1`, now); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE llm_providers SET is_active = 1, updated_at = ? WHERE provider = ?`, now, string(kind))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

type providerFields struct {
	apiKey, baseURL, model           string
	endpoint, deployment, apiVersion string
}

func (f *providerFields) fromConfig(cfg models.ProviderConfig) {
	switch c := cfg.(type) {
	case models.AzureConfig:
		f.apiKey, f.endpoint, f.deployment, f.apiVersion = c.APIKey, c.Endpoint, c.Deployment, c.APIVersion
	case models.OpenRouterConfig:
		f.apiKey, f.baseURL, f.model = c.APIKey, c.BaseURL, c.Model
	}
}

func scanProvider(row rowScanner) (*models.ProviderRecord, error) {
	var (
		rec  models.ProviderRecord
		kind string
		f    providerFields
	)
	err := row.Scan(&rec.ID, &kind, &f.apiKey, &f.baseURL, &f.model,
		&f.endpoint, &f.deployment, &f.apiVersion, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan provider: %w", err)
	}

	k, err := models.ParseProviderKind(kind)
	if err != nil {
		return nil, err
	}
	switch k {
	case models.ProviderAzure:
		rec.Config = models.AzureConfig{APIKey: f.apiKey, Endpoint: f.endpoint, Deployment: f.deployment, APIVersion: f.apiVersion}
	case models.ProviderOpenRouter:
		rec.Config = models.OpenRouterConfig{APIKey: f.apiKey, BaseURL: f.baseURL, Model: f.model}
	}
	return &rec, nil
}
