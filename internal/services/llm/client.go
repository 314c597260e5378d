package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/findosh/slideomni/internal/metrics"
	"github.com/findosh/slideomni/internal/models"
	"github.com/shopspring/decimal"
)

// Model generates text for a single prompt
type Model interface {
	Generate(ctx context.Context, prompt string) (*Completion, error)
}

// Completion is the text returned by a provider plus accounting data
type Completion struct {
	Text     string
	Provider models.ProviderKind
	Model    string
	Usage    TokenUsage
	Cost     decimal.Decimal
	Latency  time.Duration
}

// TokenUsage tracks token consumption
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// UpstreamError covers every way a provider call can fail: timeout,
// transport error, non-2xx status or an unusable body.
type UpstreamError struct {
	Provider   models.ProviderKind
	StatusCode int // zero when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: upstream: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// chatClient speaks the chat-completions protocol. Azure and OpenRouter
// differ only in URL, auth header and whether the model goes in the body.
type chatClient struct {
	kind       models.ProviderKind
	url        string
	headers    map[string]string
	bodyModel  string // empty for Azure, where the deployment is in the URL
	modelName  string
	cfg        ClientConfig
	httpClient *http.Client
	auditor    *AuditLogger
}

var _ Model = (*chatClient)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate sends prompt as a single user message
func (c *chatClient) Generate(ctx context.Context, prompt string) (*Completion, error) {
	start := time.Now()

	body, err := json.Marshal(chatRequest{
		Model:       c.bodyModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, c.fail(0, err)
	}

	raw, status, err := c.do(ctx, body)
	if err != nil {
		return nil, c.fail(status, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, c.fail(status, fmt.Errorf("malformed response: %w", err))
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, c.fail(status, fmt.Errorf("empty response from API"))
	}

	usage := TokenUsage{
		Input:  parsed.Usage.PromptTokens,
		Output: parsed.Usage.CompletionTokens,
		Total:  parsed.Usage.TotalTokens,
	}
	if usage.Total == 0 {
		usage.Total = usage.Input + usage.Output
	}

	completion := &Completion{
		Text:     parsed.Choices[0].Message.Content,
		Provider: c.kind,
		Model:    c.modelName,
		Usage:    usage,
		Cost:     EstimateCost(c.kind, usage),
		Latency:  time.Since(start),
	}

	kind := string(c.kind)
	metrics.ProviderRequests.WithLabelValues(kind, "ok").Inc()
	metrics.ProviderTokens.WithLabelValues(kind, "input").Add(float64(usage.Input))
	metrics.ProviderTokens.WithLabelValues(kind, "output").Add(float64(usage.Output))
	metrics.ProviderCostUSD.WithLabelValues(kind).Add(completion.Cost.InexactFloat64())
	c.auditor.Log(completion, nil)

	return completion, nil
}

// do posts body, retrying 5xx and transport errors with linear backoff
func (c *chatClient) do(ctx context.Context, body []byte) ([]byte, int, error) {
	var (
		resp *http.Response
		err  error
	)
	for i := 0; i <= c.cfg.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(time.Duration(i) * c.cfg.RetryBackoff):
			}
		}

		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode < 500 {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if err == nil && i < c.cfg.MaxRetries {
			resp.Body.Close()
		}
	}
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("API error: %s", truncate(string(raw), 512))
	}
	return raw, resp.StatusCode, nil
}

func (c *chatClient) fail(status int, err error) error {
	metrics.ProviderRequests.WithLabelValues(string(c.kind), "error").Inc()
	ue := &UpstreamError{Provider: c.kind, StatusCode: status, Err: err}
	c.auditor.Log(&Completion{Provider: c.kind, Model: c.modelName}, ue)
	return ue
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
