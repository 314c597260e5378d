package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/storage"
)

// ErrNoActiveProvider is returned when no provider is marked active
var ErrNoActiveProvider = errors.New("llm: no active provider")

// ConfigError reports required fields missing from a provider configuration
type ConfigError struct {
	Provider models.ProviderKind
	Missing  []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s provider is missing %s", e.Provider, strings.Join(e.Missing, ", "))
}

// Resolver finds the active provider configuration and builds clients for it
type Resolver struct {
	providers  storage.Providers
	cfg        ClientConfig
	httpClient *http.Client
	auditor    *AuditLogger
}

// NewResolver creates a resolver that builds clients sharing one http.Client
func NewResolver(providers storage.Providers, cfg ClientConfig, auditor *AuditLogger) *Resolver {
	return &Resolver{
		providers:  providers,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		auditor:    auditor,
	}
}

// ResolveActive returns the configuration of the active provider
func (r *Resolver) ResolveActive(ctx context.Context) (models.ProviderConfig, error) {
	rec, err := r.providers.Active(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoActiveProvider
	}
	if err != nil {
		return nil, fmt.Errorf("resolve provider: %w", err)
	}
	return rec.Config, nil
}

// Build validates cfg and returns a client for it
func (r *Resolver) Build(cfg models.ProviderConfig) (Model, error) {
	if cfg == nil {
		return nil, ErrNoActiveProvider
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, &ConfigError{Provider: cfg.Kind(), Missing: missing}
	}

	base := chatClient{
		kind:       cfg.Kind(),
		modelName:  cfg.ModelName(),
		cfg:        r.cfg,
		httpClient: r.httpClient,
		auditor:    r.auditor,
	}

	switch c := cfg.(type) {
	case models.AzureConfig:
		version := c.APIVersion
		if version == "" {
			version = models.DefaultAzureAPIVersion
		}
		base.url = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			strings.TrimRight(c.Endpoint, "/"), url.PathEscape(c.Deployment), url.QueryEscape(version))
		base.headers = map[string]string{"api-key": c.APIKey}
	case models.OpenRouterConfig:
		baseURL := c.BaseURL
		if baseURL == "" {
			baseURL = models.DefaultOpenRouterBaseURL
		}
		base.url = strings.TrimRight(baseURL, "/") + "/chat/completions"
		base.headers = map[string]string{
			"Authorization": "Bearer " + c.APIKey,
			"X-Title":       "SlideOmni",
		}
		base.bodyModel = c.Model
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Kind())
	}

	return &base, nil
}

// ResolveModel resolves the active provider and builds its client
func (r *Resolver) ResolveModel(ctx context.Context) (Model, error) {
	cfg, err := r.ResolveActive(ctx)
	if err != nil {
		return nil, err
	}
	return r.Build(cfg)
}

// SetActive makes kind the only active provider
func (r *Resolver) SetActive(ctx context.Context, kind models.ProviderKind) error {
	return r.providers.SetActive(ctx, kind)
}

// List returns every stored provider
func (r *Resolver) List(ctx context.Context) ([]*models.ProviderRecord, error) {
	return r.providers.List(ctx)
}

// UpsertAzure stores an Azure configuration, filling the default API version
func (r *Resolver) UpsertAzure(ctx context.Context, cfg models.AzureConfig) (*models.ProviderRecord, error) {
	if cfg.APIVersion == "" {
		cfg.APIVersion = models.DefaultAzureAPIVersion
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, &ConfigError{Provider: models.ProviderAzure, Missing: missing}
	}
	return r.providers.Upsert(ctx, cfg)
}

// UpsertOpenRouter stores an OpenRouter configuration, filling default base URL and model
func (r *Resolver) UpsertOpenRouter(ctx context.Context, cfg models.OpenRouterConfig) (*models.ProviderRecord, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = models.DefaultOpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = models.DefaultOpenRouterModel
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, &ConfigError{Provider: models.ProviderOpenRouter, Missing: missing}
	}
	return r.providers.Upsert(ctx, cfg)
}
