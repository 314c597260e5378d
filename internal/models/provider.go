package models

import (
	"fmt"
	"strings"
	"time"
)

// ProviderKind identifies a text-generation backend
type ProviderKind string

const (
	ProviderAzure      ProviderKind = "azure"
	ProviderOpenRouter ProviderKind = "openrouter"
)

// Provider defaults
const (
	DefaultAzureAPIVersion   = "2024-02-15-preview"
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "openrouter/auto"
)

// ParseProviderKind validates a kind name
func ParseProviderKind(s string) (ProviderKind, error) {
	switch k := ProviderKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ProviderAzure, ProviderOpenRouter:
		return k, nil
	}
	return "", fmt.Errorf("unsupported provider %q", s)
}

// ProviderConfig is the closed set of provider configurations.
// Only AzureConfig and OpenRouterConfig implement it.
type ProviderConfig interface {
	Kind() ProviderKind
	// Missing lists required fields that are empty
	Missing() []string
	// ModelName returns the model or deployment name used for requests
	ModelName() string
	isProviderConfig()
}

// AzureConfig configures an Azure OpenAI deployment
type AzureConfig struct {
	APIKey     string `json:"apiKey"`
	Endpoint   string `json:"endpoint"`
	Deployment string `json:"deploymentName"`
	APIVersion string `json:"apiVersion"`
}

func (AzureConfig) Kind() ProviderKind { return ProviderAzure }
func (c AzureConfig) ModelName() string { return c.Deployment }
func (AzureConfig) isProviderConfig() {}

func (c AzureConfig) Missing() []string {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "apiKey")
	}
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.Deployment == "" {
		missing = append(missing, "deploymentName")
	}
	return missing
}

// OpenRouterConfig configures an OpenRouter (OpenAI-compatible) endpoint
type OpenRouterConfig struct {
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl"`
	Model   string `json:"model"`
}

func (OpenRouterConfig) Kind() ProviderKind { return ProviderOpenRouter }
func (c OpenRouterConfig) ModelName() string { return c.Model }
func (OpenRouterConfig) isProviderConfig() {}

func (c OpenRouterConfig) Missing() []string {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "apiKey")
	}
	if c.Model == "" {
		missing = append(missing, "model")
	}
	return missing
}

// ProviderRecord is a stored provider row
type ProviderRecord struct {
	ID        int64          `json:"id"`
	Config    ProviderConfig `json:"config"`
	IsActive  bool           `json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Kind returns the provider kind of the stored config
func (r *ProviderRecord) Kind() ProviderKind {
	return r.Config.Kind()
}

// ProviderView is the admin-facing representation with the key masked
type ProviderView struct {
	Provider   ProviderKind `json:"provider"`
	APIKey     string       `json:"apiKey"`
	BaseURL    string       `json:"baseUrl,omitempty"`
	Model      string       `json:"model,omitempty"`
	Endpoint   string       `json:"azureEndpoint,omitempty"`
	Deployment string       `json:"azureDeploymentName,omitempty"`
	APIVersion string       `json:"azureApiVersion,omitempty"`
	IsActive   bool         `json:"isActive"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// View masks the API key for display
func (r *ProviderRecord) View() ProviderView {
	v := ProviderView{Provider: r.Kind(), IsActive: r.IsActive, UpdatedAt: r.UpdatedAt}
	switch c := r.Config.(type) {
	case AzureConfig:
		v.APIKey = MaskKey(c.APIKey)
		v.Endpoint = c.Endpoint
		v.Deployment = c.Deployment
		v.APIVersion = c.APIVersion
	case OpenRouterConfig:
		v.APIKey = MaskKey(c.APIKey)
		v.BaseURL = c.BaseURL
		v.Model = c.Model
	}
	return v
}

// MaskKey keeps the last four characters of a secret
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
