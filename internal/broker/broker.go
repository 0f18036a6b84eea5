package broker

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"companymcp/internal/common"
	"companymcp/internal/inference"
	"companymcp/internal/logger"
	"companymcp/internal/metrics"
	"companymcp/internal/models"
	"companymcp/internal/repositories"
	"companymcp/internal/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is a step of a single broker invocation
type State string

const (
	StatePending          State = "pending"
	StateConfigResolved   State = "config_resolved"
	StateContextBuilt     State = "context_built"
	StatePromptComposed   State = "prompt_composed"
	StateEndpointResolved State = "endpoint_resolved"
	StateResponded        State = "responded"
	StateFailed           State = "failed"
	StateLogged           State = "logged"
	StateDone             State = "done"
)

const defaultLogTimeout = 5 * time.Second

// Result is what the broker hands back for a processed message. Cause is
// kept server-side.
type Result struct {
	Success       bool       `json:"success"`
	Response      string     `json:"response,omitempty"`
	Model         string     `json:"model,omitempty"`
	TenantID      int64      `json:"company_id"`
	InteractionID *uuid.UUID `json:"interaction_id,omitempty"`
	Error         string     `json:"error,omitempty"`
	Cause         error      `json:"-"`
	Trace         []State    `json:"-"`
}

// Broker turns a user's chat message into a logged, tenant-scoped inference
// response
type Broker interface {
	// ProcessMessage rejects bad input with *common.ValidationError and
	// users without an active company with *common.AccessDeniedError before
	// any inference work. Inference failures come back as a Result with
	// Success false and a nil error.
	ProcessMessage(ctx context.Context, user *models.User, message string, extra map[string]any) (*Result, error)
}

// Dependencies are the collaborators a broker needs
type Dependencies struct {
	Tenants      services.TenantService
	Configs      services.AIConfigService
	Resolver     inference.Resolver
	Client       inference.Client
	Interactions repositories.InteractionRepository
	Builder      *ContextBuilder
	Metrics      *metrics.Metrics
	// MaxMessageLength defaults to models.MaxMessageLength
	MaxMessageLength int
	// LogTimeout bounds the interaction append, which outlives request cancellation
	LogTimeout time.Duration
}

type broker struct {
	deps Dependencies
}

func New(deps Dependencies) Broker {
	if deps.Builder == nil {
		deps.Builder = NewContextBuilder()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}
	if deps.MaxMessageLength <= 0 {
		deps.MaxMessageLength = models.MaxMessageLength
	}
	if deps.LogTimeout <= 0 {
		deps.LogTimeout = defaultLogTimeout
	}
	return &broker{deps: deps}
}

// ValidateMessage checks the message bounds in characters
func ValidateMessage(message string, limit int) error {
	if strings.TrimSpace(message) == "" {
		return common.NewValidationError("message", "is required")
	}
	if utf8.RuneCountInString(message) > limit {
		return common.NewValidationError("message", "must be at most "+strconv.Itoa(limit)+" characters")
	}
	return nil
}

func (b *broker) ProcessMessage(ctx context.Context, user *models.User, message string, extra map[string]any) (*Result, error) {
	log := logger.FromContext(ctx)
	trace := []State{StatePending}

	if err := ValidateMessage(message, b.deps.MaxMessageLength); err != nil {
		b.deps.Metrics.BrokerRequests.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}
	if user == nil {
		b.deps.Metrics.BrokerRequests.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, common.NewAccessDenied(models.MsgNoCompany, "no authenticated user")
	}

	scope, err := b.deps.Tenants.Scope(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAccessDenied) {
			b.deps.Metrics.BrokerRequests.WithLabelValues(metrics.OutcomeRejected).Inc()
		}
		return nil, err
	}
	log = log.With(zap.Int64("tenant_id", scope.TenantID()), zap.Int64("user_id", scope.UserID()))
	if requestTenant, ok := common.GetTenantIDFromContext(ctx); ok && requestTenant != scope.TenantID() {
		b.deps.Metrics.BrokerRequests.WithLabelValues(metrics.OutcomeRejected).Inc()
		log.Warn("company changed during request", zap.Int64("request_tenant_id", requestTenant))
		return nil, common.NewAccessDenied(models.MsgCompanyInactive, "request company does not match user company")
	}

	cfg, err := b.deps.Configs.GetConfig(ctx, scope.TenantID())
	if err != nil {
		log.Error("failed to resolve ai config", zap.Error(err))
		return nil, err
	}
	trace = append(trace, StateConfigResolved)

	reqCtx := b.deps.Builder.Build(scope, cfg, extra)
	trace = append(trace, StateContextBuilt)

	prompt := Compose(message, reqCtx)
	trace = append(trace, StatePromptComposed)

	endpoint := b.deps.Resolver.Resolve(ctx)
	trace = append(trace, StateEndpointResolved)

	result := &Result{TenantID: scope.TenantID()}
	var response models.JSONB

	start := time.Now()
	inferred, err := b.deps.Client.Generate(ctx, endpoint, cfg.ModelName, prompt)
	if err != nil {
		b.deps.Metrics.InferenceDuration.WithLabelValues(cfg.ModelName, "error").Observe(time.Since(start).Seconds())
		b.deps.Metrics.BrokerRequests.WithLabelValues(metrics.OutcomeInferenceError).Inc()
		log.Error("inference call failed", zap.String("endpoint", endpoint), zap.String("model", cfg.ModelName), zap.Error(err))

		trace = append(trace, StateFailed)
		result.Success = false
		result.Error = common.MsgProcessingError
		result.Model = cfg.ModelName
		result.Cause = err
		response = failureResponse(endpoint, cfg.ModelName, err)
	} else {
		b.deps.Metrics.InferenceDuration.WithLabelValues(cfg.ModelName, "success").Observe(inferred.Duration.Seconds())
		b.deps.Metrics.BrokerRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()

		trace = append(trace, StateResponded)
		result.Success = true
		result.Response = inferred.Text
		result.Model = inferred.Model
		response = models.JSONB{
			"success":  true,
			"response": inferred.Text,
			"model":    inferred.Model,
			"endpoint": inferred.Endpoint,
		}
	}

	record, err := b.appendRecord(ctx, scope, &models.InteractionEntry{
		Message:  message,
		Response: response,
		Context:  reqCtx.JSONB(),
	})
	if err != nil {
		b.deps.Metrics.InteractionLogFailures.Inc()
		log.Error("interaction log append failed", zap.Bool("inference_succeeded", result.Success), zap.Error(err))
	} else {
		result.InteractionID = &record.ID
		trace = append(trace, StateLogged)
	}

	result.Trace = append(trace, StateDone)
	return result, nil
}

func (b *broker) appendRecord(ctx context.Context, scope models.TenantScope, entry *models.InteractionEntry) (*models.InteractionRecord, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.deps.LogTimeout)
	defer cancel()

	record, err := b.deps.Interactions.Append(ctx, scope, entry)
	if err != nil {
		return nil, common.NewPersistenceError("append interaction", err)
	}
	return record, nil
}

func failureResponse(endpoint, model string, err error) models.JSONB {
	failure := map[string]any{
		"endpoint": endpoint,
		"model":    model,
		"cause":    err.Error(),
	}
	var inf *common.InferenceFailure
	if errors.As(err, &inf) && inf.StatusCode != 0 {
		failure["status_code"] = inf.StatusCode
	}
	return models.JSONB{
		"success": false,
		"error":   common.MsgProcessingError,
		"failure": failure,
	}
}
