package repositories

import (
	"context"
	"testing"
	"time"

	"companymcp/internal/models"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TenantDataRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    TenantDataRepository
	context context.Context
	now     time.Time
}

func (suite *TenantDataRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewTenantDataRepo(mock)
	suite.context = context.Background()
	suite.now = time.Now().UTC()
}

func (suite *TenantDataRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestTenantDataRepoTestSuite(t *testing.T) {
	suite.Run(t, new(TenantDataRepoTestSuite))
}

func (suite *TenantDataRepoTestSuite) TestListUsers_WithSearch() {
	suite.mock.ExpectQuery(`WHERE tenant_id = \$1\s+AND \(name ILIKE \$2 ESCAPE '\\' OR email ILIKE \$2 ESCAPE '\\'\) ORDER BY name LIMIT \$3`).
		WithArgs(int64(1), "%ana%", 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}).
			AddRow(int64(7), "Ana", "ana@acme.test", suite.now))

	users, err := suite.repo.ListUsers(suite.context, 1, "ana", 10)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), users, 1)
	assert.Equal(suite.T(), "Ana", users[0].Name)
}

func (suite *TenantDataRepoTestSuite) TestListUsers_SearchWildcardsAreLiteral() {
	suite.mock.ExpectQuery(`ILIKE \$2 ESCAPE`).
		WithArgs(int64(1), `%50\%\_off\\%`, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "created_at"}))

	users, err := suite.repo.ListUsers(suite.context, 1, `50%_off\`, 10)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), users)
}

func (suite *TenantDataRepoTestSuite) TestListProducts_ActiveInCategory() {
	suite.mock.ExpectQuery(`AND category = \$2 AND active = true ORDER BY name LIMIT \$3`).
		WithArgs(int64(1), "seeds", 5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "tenant_id", "name", "category", "price", "active", "created_at"}).
			AddRow(int64(3), int64(1), "Corn", "seeds", 12.5, true, suite.now))

	products, err := suite.repo.ListProducts(suite.context, 1, "seeds", true, 5)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), products, 1)
	assert.Equal(suite.T(), 12.5, products[0].Price)
}

func (suite *TenantDataRepoTestSuite) TestListOrders_NoStatusFilter() {
	suite.mock.ExpectQuery(`FROM orders\s+WHERE tenant_id = \$1\s+ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(int64(1), 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "tenant_id", "status", "total", "created_at"}))

	orders, err := suite.repo.ListOrders(suite.context, 1, "", 10)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), orders)
}

func (suite *TenantDataRepoTestSuite) TestCreateCustomer_ForcesTenant() {
	customer := &models.Customer{TenantID: 99, Name: "Bob", Email: "bob@example.test", Phone: stringPtr("555")}

	suite.mock.ExpectQuery(`INSERT INTO customers`).
		WithArgs(int64(1), "Bob", "bob@example.test", customer.Phone).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), suite.now))

	err := suite.repo.CreateCustomer(suite.context, 1, customer)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(42), customer.ID)
	assert.Equal(suite.T(), int64(1), customer.TenantID)
}

func (suite *TenantDataRepoTestSuite) TestAggregate_Revenue() {
	since := suite.now.Add(-24 * time.Hour)
	suite.mock.ExpectQuery(`SUM\(total\)`).
		WithArgs(int64(1), since).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(1234.5))

	value, err := suite.repo.Aggregate(suite.context, 1, MetricRevenue, since)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1234.5, value)
}

func (suite *TenantDataRepoTestSuite) TestAggregate_UnknownMetric() {
	_, err := suite.repo.Aggregate(suite.context, 1, "sessions", suite.now)
	assert.Error(suite.T(), err)
}
