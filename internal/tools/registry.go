package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"companymcp/internal/common"
	"companymcp/internal/models"
	"companymcp/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// Kind identifies one of the fixed set of tools
type Kind string

const (
	KindGetUsers       Kind = "get_users"
	KindGetProducts    Kind = "get_products"
	KindGetOrders      Kind = "get_orders"
	KindCreateCustomer Kind = "create_customer"
	KindGetAnalytics   Kind = "get_analytics"
)

const MsgToolNotAllowed = "Tool is not enabled for this company"

// ParamType is the wire type of a tool parameter
type ParamType string

const (
	TypeInt    ParamType = "int"
	TypeString ParamType = "string"
	TypeBool   ParamType = "bool"
)

// Param describes one tool parameter. Rule is a validator tag.
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Rule        string    `json:"rule"`
	Default     any       `json:"default,omitempty"`
	Description string    `json:"description"`
}

// Params are decoded, validated parameter values keyed by name
type Params map[string]any

func (p Params) Int(name string) int {
	v, _ := p[name].(int)
	return v
}

func (p Params) String(name string) string {
	v, _ := p[name].(string)
	return v
}

func (p Params) Bool(name string) bool {
	v, _ := p[name].(bool)
	return v
}

type executeFunc func(ctx context.Context, store repositories.TenantDataRepository, tenantID int64, params Params, now time.Time) (any, error)

// Tool is a registered tool. Execution always receives the caller's tenant id.
type Tool struct {
	Kind        Kind
	Description string
	Params      []Param
	execute     executeFunc
}

// Descriptor is the public view of a tool
type Descriptor struct {
	Name        Kind    `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"parameters"`
}

// Result is the outcome of a tool execution
type Result struct {
	Tool     Kind  `json:"tool"`
	TenantID int64 `json:"company_id"`
	Data     any   `json:"data"`
}

var order = []Kind{KindGetUsers, KindGetProducts, KindGetOrders, KindCreateCustomer, KindGetAnalytics}

var limitParam = Param{Name: "limit", Type: TypeInt, Rule: "min=1,max=100", Default: 10, Description: "Maximum number of rows"}

var definitions = map[Kind]*Tool{
	KindGetUsers: {
		Kind:        KindGetUsers,
		Description: "List the company's users",
		Params: []Param{
			limitParam,
			{Name: "search", Type: TypeString, Rule: "max=255", Description: "Match on name or email"},
		},
		execute: func(ctx context.Context, store repositories.TenantDataRepository, tenantID int64, p Params, _ time.Time) (any, error) {
			return store.ListUsers(ctx, tenantID, p.String("search"), p.Int("limit"))
		},
	},
	KindGetProducts: {
		Kind:        KindGetProducts,
		Description: "List the company's products",
		Params: []Param{
			limitParam,
			{Name: "category", Type: TypeString, Rule: "max=255", Description: "Exact category"},
			{Name: "active_only", Type: TypeBool, Default: false, Description: "Only active products"},
		},
		execute: func(ctx context.Context, store repositories.TenantDataRepository, tenantID int64, p Params, _ time.Time) (any, error) {
			return store.ListProducts(ctx, tenantID, p.String("category"), p.Bool("active_only"), p.Int("limit"))
		},
	},
	KindGetOrders: {
		Kind:        KindGetOrders,
		Description: "List the company's most recent orders",
		Params: []Param{
			limitParam,
			{Name: "status", Type: TypeString, Rule: "omitempty,oneof=pending processing completed cancelled", Description: "Order status"},
		},
		execute: func(ctx context.Context, store repositories.TenantDataRepository, tenantID int64, p Params, _ time.Time) (any, error) {
			return store.ListOrders(ctx, tenantID, p.String("status"), p.Int("limit"))
		},
	},
	KindCreateCustomer: {
		Kind:        KindCreateCustomer,
		Description: "Create a customer for the company",
		Params: []Param{
			{Name: "name", Type: TypeString, Rule: "required,max=255", Description: "Customer name"},
			{Name: "email", Type: TypeString, Rule: "required,email", Description: "Customer email"},
			{Name: "phone", Type: TypeString, Rule: "max=20", Description: "Customer phone"},
		},
		execute: func(ctx context.Context, store repositories.TenantDataRepository, tenantID int64, p Params, _ time.Time) (any, error) {
			customer := &models.Customer{Name: p.String("name"), Email: p.String("email")}
			if phone := p.String("phone"); phone != "" {
				customer.Phone = &phone
			}
			if err := store.CreateCustomer(ctx, tenantID, customer); err != nil {
				return nil, err
			}
			return customer, nil
		},
	},
	KindGetAnalytics: {
		Kind:        KindGetAnalytics,
		Description: "Aggregate a company metric over a period",
		Params: []Param{
			{Name: "period", Type: TypeString, Rule: "required,oneof=today week month year", Description: "Reporting period"},
			{Name: "metric", Type: TypeString, Rule: "required,oneof=users orders revenue products", Description: "Metric to aggregate"},
		},
		execute: func(ctx context.Context, store repositories.TenantDataRepository, tenantID int64, p Params, now time.Time) (any, error) {
			since := PeriodStart(p.String("period"), now)
			value, err := store.Aggregate(ctx, tenantID, p.String("metric"), since)
			if err != nil {
				return nil, err
			}
			return &models.AnalyticsResult{Metric: p.String("metric"), Period: p.String("period"), Since: since, Value: value}, nil
		},
	},
}

// PeriodStart maps a reporting period onto its first instant
func PeriodStart(period string, now time.Time) time.Time {
	now = now.UTC()
	switch period {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case "week":
		return now.AddDate(0, 0, -7)
	case "year":
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// Registry executes tools against tenant-owned data
type Registry struct {
	store    repositories.TenantDataRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewRegistry(store repositories.TenantDataRepository, validate *validator.Validate) *Registry {
	return &Registry{store: store, validate: validate, now: time.Now}
}

// Names returns every known tool name in a stable order
func Names() []string {
	names := make([]string, 0, len(order))
	for _, k := range order {
		names = append(names, string(k))
	}
	return names
}

// Describe lists the tools allowed by cfg
func (r *Registry) Describe(cfg *models.TenantAIConfig) []Descriptor {
	out := []Descriptor{}
	for _, k := range order {
		if !cfg.AllowsTool(string(k)) {
			continue
		}
		t := definitions[k]
		out = append(out, Descriptor{Name: t.Kind, Description: t.Description, Params: t.Params})
	}
	return out
}

// Available returns the allowed tool names for cfg
func Available(cfg *models.TenantAIConfig) []string {
	names := []string{}
	for _, k := range order {
		if cfg.AllowsTool(string(k)) {
			names = append(names, string(k))
		}
	}
	return names
}

// Execute runs the named tool within scope. Unknown tools and bad parameters
// are ValidationError; tools outside the tenant's allow-list are
// AccessDeniedError; storage failures are PersistenceError.
func (r *Registry) Execute(ctx context.Context, scope models.TenantScope, cfg *models.TenantAIConfig, name string, raw map[string]any) (*Result, error) {
	tool, ok := definitions[Kind(name)]
	if !ok {
		return nil, common.NewValidationError("tool", fmt.Sprintf("unknown tool %q", name))
	}
	if !scope.Valid() || cfg == nil || cfg.TenantID != scope.TenantID() {
		return nil, common.NewAccessDenied(MsgToolNotAllowed, "tool config does not belong to scope")
	}
	if !cfg.AllowsTool(name) {
		return nil, common.NewAccessDenied(MsgToolNotAllowed, fmt.Sprintf("tool %s not in allow-list", name))
	}

	params, err := r.bind(tool, raw)
	if err != nil {
		return nil, err
	}

	data, err := tool.execute(ctx, r.store, scope.TenantID(), params, r.now())
	if err != nil {
		return nil, common.NewPersistenceError("execute tool "+name, err)
	}
	return &Result{Tool: tool.Kind, TenantID: scope.TenantID(), Data: data}, nil
}

func (r *Registry) bind(tool *Tool, raw map[string]any) (Params, error) {
	verr := &common.ValidationError{}
	params := Params{}

	for _, p := range tool.Params {
		value, present := raw[p.Name]
		if !present || value == nil {
			value = p.Default
		}

		coerced, err := coerce(p.Type, value)
		if err != nil {
			verr.Add(p.Name, err.Error())
			continue
		}
		if p.Rule != "" {
			if err := r.validate.Var(coerced, p.Rule); err != nil {
				verr.Add(p.Name, describe(err, p.Rule))
				continue
			}
		}
		params[p.Name] = coerced
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return params, nil
}

func coerce(t ParamType, value any) (any, error) {
	switch t {
	case TypeInt:
		switch v := value.(type) {
		case nil:
			return 0, nil
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("must be an integer")
			}
			return int(v), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("must be an integer")
			}
			return n, nil
		}
		return nil, fmt.Errorf("must be an integer")
	case TypeBool:
		switch v := value.(type) {
		case nil:
			return false, nil
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("must be a boolean")
			}
			return b, nil
		}
		return nil, fmt.Errorf("must be a boolean")
	default:
		switch v := value.(type) {
		case nil:
			return "", nil
		case string:
			return strings.TrimSpace(v), nil
		}
		return nil, fmt.Errorf("must be a string")
	}
}

func describe(err error, rule string) string {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s", fe.Tag())
	}
	return "failed " + rule
}
