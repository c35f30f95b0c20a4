package services

import (
	"context"
	"io"
	"time"

	"receiptpanel/internal/models"
	"receiptpanel/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockLicenseRepository mocks the LicenseRepository interface for testing
type MockLicenseRepository struct {
	mock.Mock
}

func (m *MockLicenseRepository) Create(ctx context.Context, license *models.License) error {
	args := m.Called(ctx, license)
	return args.Error(0)
}

func (m *MockLicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) GetByKey(ctx context.Context, key string) (*models.License, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) GetByKeyForUpdate(ctx context.Context, key string) (*models.License, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) List(ctx context.Context) ([]*models.License, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockLicenseRepository) RecordCheck(ctx context.Context, id uuid.UUID, daysRemaining int, status string) error {
	args := m.Called(ctx, id, daysRemaining, status)
	return args.Error(0)
}

func (m *MockLicenseRepository) AddDays(ctx context.Context, id uuid.UUID, days int) error {
	args := m.Called(ctx, id, days)
	return args.Error(0)
}

func (m *MockLicenseRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLicenseRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

func (m *MockLicenseRepository) SetMaxDevices(ctx context.Context, id uuid.UUID, maxDevices int) error {
	args := m.Called(ctx, id, maxDevices)
	return args.Error(0)
}

func (m *MockLicenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLicenseRepository) ExpireOverdue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLicenseRepository) RefreshDaysRemaining(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLicenseRepository) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockDeviceRepository mocks the DeviceRepository interface for testing
type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) Create(ctx context.Context, device *models.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockDeviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Device), args.Error(1)
}

func (m *MockDeviceRepository) GetByHardwareID(ctx context.Context, hardwareID string) (*models.Device, error) {
	args := m.Called(ctx, hardwareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Device), args.Error(1)
}

func (m *MockDeviceRepository) CountByLicense(ctx context.Context, licenseID uuid.UUID) (int, error) {
	args := m.Called(ctx, licenseID)
	return args.Int(0), args.Error(1)
}

func (m *MockDeviceRepository) Touch(ctx context.Context, id uuid.UUID, pcName, osInfo, appVersion string, online bool) error {
	args := m.Called(ctx, id, pcName, osInfo, appVersion, online)
	return args.Error(0)
}

func (m *MockDeviceRepository) AddReceipt(ctx context.Context, id uuid.UUID, amount float64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockDeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeviceRepository) List(ctx context.Context) ([]*models.Device, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Device), args.Error(1)
}

func (m *MockDeviceRepository) MarkIdleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) CountOnline(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockSessionRepository mocks the SessionRepository interface for testing
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) End(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	args := m.Called(ctx, id, endedAt)
	return args.Error(0)
}

func (m *MockSessionRepository) IncrementLegacy(ctx context.Context, id uuid.UUID, amount float64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockSessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]*models.Session, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionRepository) ListByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*models.Session, error) {
	args := m.Called(ctx, deviceID, limit)
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionRepository) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockReceiptRepository mocks the ReceiptRepository interface for testing
type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) ListRecentByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*models.Receipt, error) {
	args := m.Called(ctx, deviceID, limit)
	return args.Get(0).([]*models.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) Export(ctx context.Context, filter models.ReceiptFilter) ([]*models.ReceiptExportRow, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.ReceiptExportRow), args.Error(1)
}

// MockStatsRepository mocks the StatsRepository interface for testing
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) IncrementDaily(ctx context.Context, deviceID, licenseID uuid.UUID, date time.Time, amount, vat float64) error {
	args := m.Called(ctx, deviceID, licenseID, date, amount, vat)
	return args.Error(0)
}

func (m *MockStatsRepository) IncrementCompany(ctx context.Context, licenseID uuid.UUID, companyName string, amount, vat float64) error {
	args := m.Called(ctx, licenseID, companyName, amount, vat)
	return args.Error(0)
}

func (m *MockStatsRepository) DailyTotals(ctx context.Context, startDate, endDate string) ([]*models.DailyTotal, error) {
	args := m.Called(ctx, startDate, endDate)
	return args.Get(0).([]*models.DailyTotal), args.Error(1)
}

func (m *MockStatsRepository) DailyForDevice(ctx context.Context, deviceID uuid.UUID, since time.Time) ([]*models.DailyStat, error) {
	args := m.Called(ctx, deviceID, since)
	return args.Get(0).([]*models.DailyStat), args.Error(1)
}

func (m *MockStatsRepository) CompanyStats(ctx context.Context, licenseID *uuid.UUID) ([]*models.CompanyStat, error) {
	args := m.Called(ctx, licenseID)
	return args.Get(0).([]*models.CompanyStat), args.Error(1)
}

func (m *MockStatsRepository) TodayTotals(ctx context.Context) (*models.DailyTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyTotal), args.Error(1)
}

// MockActivityLogRepository mocks the ActivityLogRepository interface for testing
type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityLogRepository) List(ctx context.Context, filter models.ActivityFilter) ([]*models.ActivityLog, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.ActivityLog), args.Error(1)
}

// MockAdminUserRepository mocks the AdminUserRepository interface for testing
type MockAdminUserRepository struct {
	mock.Mock
}

func (m *MockAdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAdminUserRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAdminUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

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

// MockObjectStore mocks the export object store
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, bucket, object string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, bucket, object, reader, size, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) PresignedURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, object, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, bucket, object string) error {
	args := m.Called(ctx, bucket, object)
	return args.Error(0)
}

func (m *MockObjectStore) EnsureBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

// mockRepos bundles one mock per repository behind a *repositories.Repositories.
type mockRepos struct {
	licenses   *MockLicenseRepository
	devices    *MockDeviceRepository
	sessions   *MockSessionRepository
	receipts   *MockReceiptRepository
	stats      *MockStatsRepository
	activities *MockActivityLogRepository
	admins     *MockAdminUserRepository
	repos      *repositories.Repositories
}

func newMockRepos() *mockRepos {
	m := &mockRepos{
		licenses:   new(MockLicenseRepository),
		devices:    new(MockDeviceRepository),
		sessions:   new(MockSessionRepository),
		receipts:   new(MockReceiptRepository),
		stats:      new(MockStatsRepository),
		activities: new(MockActivityLogRepository),
		admins:     new(MockAdminUserRepository),
	}
	m.repos = &repositories.Repositories{
		Licenses:   m.licenses,
		Devices:    m.devices,
		Sessions:   m.sessions,
		Receipts:   m.receipts,
		Stats:      m.stats,
		Activities: m.activities,
		Admins:     m.admins,
	}
	return m
}

func (m *mockRepos) AssertExpectations(t mock.TestingT) {
	m.licenses.AssertExpectations(t)
	m.devices.AssertExpectations(t)
	m.sessions.AssertExpectations(t)
	m.receipts.AssertExpectations(t)
	m.stats.AssertExpectations(t)
	m.activities.AssertExpectations(t)
	m.admins.AssertExpectations(t)
}

// fakeUnitOfWork runs fn directly against the mocks and records whether the
// work would have committed.
type fakeUnitOfWork struct {
	repos     *repositories.Repositories
	calls     int
	committed int
}

func (u *fakeUnitOfWork) Do(ctx context.Context, fn func(repos *repositories.Repositories) error) error {
	u.calls++
	if err := fn(u.repos); err != nil {
		return err
	}
	u.committed++
	return nil
}
