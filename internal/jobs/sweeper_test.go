package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"receiptpanel/internal/metrics"
	"receiptpanel/internal/models"
	"receiptpanel/internal/repositories"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	expireOverdueSQL   = "UPDATE licenses SET status = 'expired'"
	refreshDaysSQL     = "SET days_remaining = CEIL"
	markIdleOfflineSQL = "UPDATE devices SET is_online = FALSE"
)

// MockCacheService mocks the dashboard cache
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetDashboard(ctx context.Context) (*models.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func (m *MockCacheService) SetDashboard(ctx context.Context, d *models.Dashboard, ttl time.Duration) error {
	args := m.Called(ctx, d, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateDashboard(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Close() error {
	args := m.Called()
	return args.Error(0)
}

type SweeperTestSuite struct {
	suite.Suite
	db      pgxmock.PgxPoolIface
	cache   *MockCacheService
	metrics *metrics.Metrics
	sweeper *Sweeper
	now     time.Time
	ctx     context.Context
}

func (suite *SweeperTestSuite) SetupTest() {
	db, err := pgxmock.NewPool()
	suite.Require().NoError(err)
	suite.db = db
	suite.cache = new(MockCacheService)
	suite.metrics = metrics.New(prometheus.NewRegistry())
	suite.now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	suite.ctx = context.Background()

	suite.sweeper = NewSweeper(repositories.New(db), suite.cache, suite.metrics, 5*time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	suite.sweeper.now = func() time.Time { return suite.now }
}

func (suite *SweeperTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.db.ExpectationsWereMet())
	suite.cache.AssertExpectations(suite.T())
	suite.db.Close()
}

func TestSweeperTestSuite(t *testing.T) {
	suite.Run(t, new(SweeperTestSuite))
}

func (suite *SweeperTestSuite) TestExpireLicensesInvalidatesDashboard() {
	suite.db.ExpectExec(regexp.QuoteMeta(expireOverdueSQL)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	suite.db.ExpectExec(regexp.QuoteMeta(refreshDaysSQL)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 7))
	suite.cache.On("InvalidateDashboard", suite.ctx).Return(nil).Once()

	err := suite.sweeper.ExpireLicenses(suite.ctx)

	suite.NoError(err)
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.SweepRuns.WithLabelValues(JobLicenseExpiry, "ok")))
	suite.Equal(2.0, testutil.ToFloat64(suite.metrics.SweepAffected.WithLabelValues(JobLicenseExpiry)))
}

func (suite *SweeperTestSuite) TestExpireLicensesNothingOverdue() {
	suite.db.ExpectExec(regexp.QuoteMeta(expireOverdueSQL)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.db.ExpectExec(regexp.QuoteMeta(refreshDaysSQL)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))

	suite.NoError(suite.sweeper.ExpireLicenses(suite.ctx))
	suite.cache.AssertNotCalled(suite.T(), "InvalidateDashboard", mock.Anything)
}

func (suite *SweeperTestSuite) TestExpireLicensesStoreError() {
	suite.db.ExpectExec(regexp.QuoteMeta(expireOverdueSQL)).
		WillReturnError(errors.New("connection reset"))

	err := suite.sweeper.ExpireLicenses(suite.ctx)

	suite.EqualError(err, "connection reset")
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.SweepRuns.WithLabelValues(JobLicenseExpiry, "error")))
}

func (suite *SweeperTestSuite) TestExpireLicensesToleratesCacheFailure() {
	suite.db.ExpectExec(regexp.QuoteMeta(expireOverdueSQL)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.db.ExpectExec(regexp.QuoteMeta(refreshDaysSQL)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.cache.On("InvalidateDashboard", suite.ctx).Return(errors.New("redis down")).Once()

	suite.NoError(suite.sweeper.ExpireLicenses(suite.ctx))
}

func (suite *SweeperTestSuite) TestMarkIdleDevicesUsesCutoff() {
	suite.db.ExpectExec(regexp.QuoteMeta(markIdleOfflineSQL)).
		WithArgs(suite.now.Add(-5 * time.Minute)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	suite.NoError(suite.sweeper.MarkIdleDevices(suite.ctx))
	suite.Equal(3.0, testutil.ToFloat64(suite.metrics.SweepAffected.WithLabelValues(JobDevicePresence)))
}

func (suite *SweeperTestSuite) TestMarkIdleDevicesStoreError() {
	suite.db.ExpectExec(regexp.QuoteMeta(markIdleOfflineSQL)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("timeout"))

	suite.Error(suite.sweeper.MarkIdleDevices(suite.ctx))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.SweepRuns.WithLabelValues(JobDevicePresence, "error")))
}

func TestSweeperWithoutCache(t *testing.T) {
	db, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer db.Close()

	db.ExpectExec(regexp.QuoteMeta(expireOverdueSQL)).WillReturnResult(pgxmock.NewResult("UPDATE", 5))
	db.ExpectExec(regexp.QuoteMeta(refreshDaysSQL)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	sweeper := NewSweeper(repositories.New(db), nil, metrics.New(prometheus.NewRegistry()), time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NoError(t, sweeper.ExpireLicenses(context.Background()))
	assert.NoError(t, db.ExpectationsWereMet())
}
