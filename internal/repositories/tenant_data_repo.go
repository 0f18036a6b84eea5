package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"companymcp/internal/models"
	"companymcp/pkg/database"
)

// Metric names understood by Aggregate
const (
	MetricUsers    = "users"
	MetricOrders   = "orders"
	MetricRevenue  = "revenue"
	MetricProducts = "products"
)

// TenantDataRepository reads and writes tenant-owned business rows. Every
// method takes the tenant id as its first argument and filters on it.
type TenantDataRepository interface {
	ListUsers(ctx context.Context, tenantID int64, search string, limit int) ([]*models.UserSummary, error)
	ListProducts(ctx context.Context, tenantID int64, category string, activeOnly bool, limit int) ([]*models.Product, error)
	ListOrders(ctx context.Context, tenantID int64, status string, limit int) ([]*models.Order, error)
	CreateCustomer(ctx context.Context, tenantID int64, customer *models.Customer) error
	Aggregate(ctx context.Context, tenantID int64, metric string, since time.Time) (float64, error)
}

type tenantDataRepo struct {
	db database.DBTX
}

func NewTenantDataRepo(db database.DBTX) TenantDataRepository {
	return &tenantDataRepo{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *tenantDataRepo) ListUsers(ctx context.Context, tenantID int64, search string, limit int) ([]*models.UserSummary, error) {
	query := `
		SELECT id, name, email, created_at
		FROM users
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	if search != "" {
		query += ` AND (name ILIKE $2 ESCAPE '\' OR email ILIKE $2 ESCAPE '\')`
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
	}
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.UserSummary{}
	for rows.Next() {
		u := &models.UserSummary{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *tenantDataRepo) ListProducts(ctx context.Context, tenantID int64, category string, activeOnly bool, limit int) ([]*models.Product, error) {
	query := `
		SELECT id, tenant_id, name, category, price, active, created_at
		FROM products
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if activeOnly {
		query += " AND active = true"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Category, &p.Price, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *tenantDataRepo) ListOrders(ctx context.Context, tenantID int64, status string, limit int) ([]*models.Order, error) {
	query := `
		SELECT id, tenant_id, status, total, created_at
		FROM orders
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		o := &models.Order{}
		if err := rows.Scan(&o.ID, &o.TenantID, &o.Status, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *tenantDataRepo) CreateCustomer(ctx context.Context, tenantID int64, customer *models.Customer) error {
	customer.TenantID = tenantID
	query := `
		INSERT INTO customers (tenant_id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query, tenantID, customer.Name, customer.Email, customer.Phone).
		Scan(&customer.ID, &customer.CreatedAt)
}

func (r *tenantDataRepo) Aggregate(ctx context.Context, tenantID int64, metric string, since time.Time) (float64, error) {
	var query string
	switch metric {
	case MetricUsers:
		query = `SELECT COUNT(*)::float8 FROM users WHERE tenant_id = $1 AND created_at >= $2`
	case MetricOrders:
		query = `SELECT COUNT(*)::float8 FROM orders WHERE tenant_id = $1 AND created_at >= $2`
	case MetricRevenue:
		query = `SELECT COALESCE(SUM(total), 0)::float8 FROM orders WHERE tenant_id = $1 AND created_at >= $2 AND status = 'completed'`
	case MetricProducts:
		query = `SELECT COUNT(*)::float8 FROM products WHERE tenant_id = $1 AND created_at >= $2`
	default:
		return 0, fmt.Errorf("unknown metric %q", metric)
	}

	var value float64
	if err := r.db.QueryRow(ctx, query, tenantID, since).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
