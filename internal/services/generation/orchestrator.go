// Package generation sequences the credit-gated presentation pipeline:
// authenticate, validate, charge, resolve a provider, generate content,
// render and persist.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/findosh/slideomni/internal/logging"
	"github.com/findosh/slideomni/internal/metrics"
	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/services/auth"
	"github.com/findosh/slideomni/internal/services/credits"
	"github.com/findosh/slideomni/internal/services/llm"
	"github.com/findosh/slideomni/internal/services/slides"
	"github.com/findosh/slideomni/internal/templates"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Slide count bounds for generated decks
const (
	MinSlides = 3
	MaxSlides = 15
)

// GenerationCost is the omnitoken price of one accepted request
const GenerationCost = 1

// Authenticator validates session tokens
type Authenticator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Charger debits credit counters
type Charger interface {
	Charge(ctx context.Context, username string, counter models.Counter, amount int) error
}

// ModelResolver builds a client for the active provider
type ModelResolver interface {
	ResolveModel(ctx context.Context) (llm.Model, error)
}

// ContentGenerator produces slide records from a model and can ask the same
// model to lay those records out as a complete document
type ContentGenerator interface {
	Generate(ctx context.Context, model llm.Model, req slides.Request) (*slides.Result, error)
	Design(ctx context.Context, model llm.Model, req slides.DesignRequest) (string, error)
}

// Persister stores finished presentations
type Persister interface {
	Create(ctx context.Context, p *models.Presentation) error
}

// Request is a generation request
type Request struct {
	Topic       string                `json:"topic" validate:"required,max=500"`
	Description string                `json:"description" validate:"max=5000"`
	SlideCount  int                   `json:"slideCount"`
	TemplateID  string                `json:"templateId" validate:"required"`
	MixLayouts  bool                  `json:"mixLayouts"`
	Slides      []models.SlideContent `json:"slides" validate:"omitempty,min=3,max=15,dive"`
}

// Result is returned by a successful Generate
type Result struct {
	PresentationID string `json:"presentationId"`
	SlideCount     int    `json:"slideCount"`
	TemplateName   string `json:"templateName"`
	Warning        string `json:"warning,omitempty"`
}

// ContentRequest asks for slide records without rendering
type ContentRequest struct {
	Topic       string `json:"topic" validate:"required,max=500"`
	Description string `json:"description" validate:"max=5000"`
	SlideCount  int    `json:"slideCount" validate:"required,min=3,max=15"`
}

// ContentResult holds generated records for review
type ContentResult struct {
	Slides  []models.SlideContent `json:"slides"`
	Warning string                `json:"warning,omitempty"`
}

// StructureResult is returned by GenerateFromStructure
type StructureResult struct {
	PresentationID string                `json:"presentationId"`
	SlideCount     int                   `json:"slideCount"`
	Slides         []models.SlideContent `json:"slides"`
	Warning        string                `json:"warning,omitempty"`
}

// Orchestrator runs the pipeline
type Orchestrator struct {
	auth      Authenticator
	ledger    Charger
	resolver  ModelResolver
	generator ContentGenerator
	store     Persister
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewOrchestrator wires the pipeline stages
func NewOrchestrator(a Authenticator, ledger Charger, resolver ModelResolver, gen ContentGenerator, store Persister, logger *zap.Logger) *Orchestrator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterStructValidation(validateSlideCount, Request{})
	return &Orchestrator{
		auth:      a,
		ledger:    ledger,
		resolver:  resolver,
		generator: gen,
		store:     store,
		validate:  v,
		logger:    logging.OrNop(logger).Named("generation"),
	}
}

// validateSlideCount bounds slideCount. With supplied slides the list length
// is bounded by its tag and a non-zero slideCount must agree with it.
func validateSlideCount(sl validator.StructLevel) {
	req := sl.Current().Interface().(Request)
	if n := len(req.Slides); n > 0 {
		if req.SlideCount != 0 && req.SlideCount != n {
			sl.ReportError(req.SlideCount, "slideCount", "SlideCount", "eqslides", strconv.Itoa(n))
		}
		return
	}
	if req.SlideCount < MinSlides || req.SlideCount > MaxSlides {
		sl.ReportError(req.SlideCount, "slideCount", "SlideCount", "range", "3-15")
	}
}

// Generate runs the full pipeline for one request. The omnitoken is charged
// once validation passes and is not refunded if a later step fails.
func (o *Orchestrator) Generate(ctx context.Context, token string, req Request) (res *Result, err error) {
	start := time.Now()
	defer func() { o.observe(start, err) }()

	claims, ownerID, err := o.authenticate(token)
	if err != nil {
		return nil, err
	}

	if err := o.validate.Struct(req); err != nil {
		return nil, fail(StateValidating, KindInvalidRequest, err)
	}
	tpl, ok := templates.ByID(req.TemplateID)
	if !ok {
		return nil, fail(StateValidating, KindInvalidRequest, ErrUnknownTemplate)
	}

	if err := o.charge(ctx, claims.Username); err != nil {
		return nil, err
	}

	records, warning := req.Slides, ""
	if len(records) == 0 {
		content, _, err := o.produce(ctx, slides.Request{Topic: req.Topic, Description: req.Description, SlideCount: req.SlideCount})
		if err != nil {
			return nil, err
		}
		records, warning = content.Slides, content.Warning
	}

	doc, err := templates.Render(records, tpl, req.Topic, req.MixLayouts)
	if err != nil {
		return nil, fail(StateRendering, KindRenderFailed, err)
	}

	p, err := o.persist(ctx, ownerID, req.Topic, req.Description, doc, records)
	if err != nil {
		return nil, err
	}

	o.logger.Info("presentation generated",
		zap.String("presentation_id", p.ID),
		zap.String("username", claims.Username),
		zap.String("template", tpl.ID),
		zap.Int("slide_count", p.SlideCount),
		zap.Bool("supplied_slides", len(req.Slides) > 0),
	)
	return &Result{
		PresentationID: p.ID,
		SlideCount:     p.SlideCount,
		TemplateName:   tpl.Name,
		Warning:        warning,
	}, nil
}

// GenerateContent charges one omnitoken and returns slide records for
// review, without rendering or persisting them.
func (o *Orchestrator) GenerateContent(ctx context.Context, token string, req ContentRequest) (res *ContentResult, err error) {
	start := time.Now()
	defer func() { o.observe(start, err) }()

	claims, _, err := o.authenticate(token)
	if err != nil {
		return nil, err
	}
	if err := o.validate.Struct(req); err != nil {
		return nil, fail(StateValidating, KindInvalidRequest, err)
	}
	if err := o.charge(ctx, claims.Username); err != nil {
		return nil, err
	}

	content, _, err := o.produce(ctx, slides.Request{Topic: req.Topic, Description: req.Description, SlideCount: req.SlideCount})
	if err != nil {
		return nil, err
	}
	return &ContentResult{Slides: content.Slides, Warning: content.Warning}, nil
}

// GenerateFromStructure charges one omnitoken, generates slide records and
// then asks the same model for the whole styled document. The navigation
// controller is injected afterwards and the document must pass Validate
// before it is stored.
func (o *Orchestrator) GenerateFromStructure(ctx context.Context, token string, req ContentRequest) (res *StructureResult, err error) {
	start := time.Now()
	defer func() { o.observe(start, err) }()

	claims, ownerID, err := o.authenticate(token)
	if err != nil {
		return nil, err
	}
	if err := o.validate.Struct(req); err != nil {
		return nil, fail(StateValidating, KindInvalidRequest, err)
	}
	if err := o.charge(ctx, claims.Username); err != nil {
		return nil, err
	}

	content, model, err := o.produce(ctx, slides.Request{Topic: req.Topic, Description: req.Description, SlideCount: req.SlideCount})
	if err != nil {
		return nil, err
	}
	records := content.Slides

	page, err := o.generator.Design(ctx, model, slides.DesignRequest{Topic: req.Topic, Slides: records})
	if err != nil {
		return nil, fail(StateDesigning, KindGenerationFailed, err)
	}
	doc, err := templates.InjectNavScript(page, len(records))
	if err != nil {
		return nil, fail(StateRendering, KindRenderFailed, err)
	}
	if err := templates.Validate(doc, len(records)); err != nil {
		return nil, fail(StateRendering, KindRenderFailed, err)
	}

	p, err := o.persist(ctx, ownerID, req.Topic, req.Description, doc, records)
	if err != nil {
		return nil, err
	}

	o.logger.Info("presentation designed",
		zap.String("presentation_id", p.ID),
		zap.String("username", claims.Username),
		zap.Int("slide_count", p.SlideCount),
		zap.Int("document_bytes", len(doc)),
	)
	return &StructureResult{
		PresentationID: p.ID,
		SlideCount:     p.SlideCount,
		Slides:         records,
		Warning:        content.Warning,
	}, nil
}

func (o *Orchestrator) persist(ctx context.Context, ownerID uuid.UUID, title, description, doc string, records []models.SlideContent) (*models.Presentation, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fail(StatePersisting, KindPersistFailed, err)
	}
	p := &models.Presentation{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		HTML:        doc,
		SlideCount:  len(records),
		Slides:      json.RawMessage(raw),
	}
	if err := o.store.Create(ctx, p); err != nil {
		return nil, fail(StatePersisting, KindPersistFailed, err)
	}
	return p, nil
}

func (o *Orchestrator) authenticate(token string) (*auth.Claims, uuid.UUID, error) {
	claims, err := o.auth.ValidateToken(token)
	if err != nil {
		return nil, uuid.Nil, fail(StateAuthenticating, KindUnauthenticated, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, uuid.Nil, fail(StateAuthenticating, KindUnauthenticated, auth.ErrInvalidToken)
	}
	return claims, id, nil
}

func (o *Orchestrator) charge(ctx context.Context, username string) error {
	err := o.ledger.Charge(ctx, username, models.CounterTokens, GenerationCost)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, credits.ErrInsufficientCredit):
		return fail(StateCharging, KindInsufficientCredit, err)
	default:
		return fail(StateCharging, KindInternal, err)
	}
}

// produce resolves the active provider and asks it for content. The model is
// returned for follow-up calls. No lock is held while the provider call runs.
func (o *Orchestrator) produce(ctx context.Context, req slides.Request) (*slides.Result, llm.Model, error) {
	model, err := o.resolver.ResolveModel(ctx)
	if err != nil {
		var cfgErr *llm.ConfigError
		switch {
		case errors.Is(err, llm.ErrNoActiveProvider):
			return nil, nil, fail(StateResolvingProvider, KindNoProvider, err)
		case errors.As(err, &cfgErr):
			return nil, nil, fail(StateResolvingProvider, KindBadConfig, err)
		default:
			return nil, nil, fail(StateResolvingProvider, KindInternal, err)
		}
	}

	content, err := o.generator.Generate(ctx, model, req)
	if err != nil {
		return nil, nil, fail(StateGeneratingContent, KindGenerationFailed, err)
	}
	if len(content.Slides) == 0 {
		return nil, nil, fail(StateGeneratingContent, KindGenerationFailed, errors.New("model returned no slides"))
	}
	return content, model, nil
}

func (o *Orchestrator) observe(start time.Time, err error) {
	outcome := string(StateDone)
	if err != nil {
		outcome = string(KindOf(err))
		var e *Error
		if errors.As(err, &e) {
			o.logger.Warn("generation failed",
				zap.String("state", string(e.State)),
				zap.String("kind", string(e.Kind)),
				zap.Error(e.Err),
			)
		}
	}
	metrics.Generations.WithLabelValues(outcome).Inc()
	metrics.GenerationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
