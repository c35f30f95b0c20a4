package handlers

import (
	"context"

	"receiptpanel/internal/models"
	"receiptpanel/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockLicenseService struct {
	mock.Mock
}

func (m *MockLicenseService) Validate(ctx context.Context, req services.CheckRequest) (*services.CheckResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckResult), args.Error(1)
}

func (m *MockLicenseService) Issue(ctx context.Context, req services.IssueRequest) (*models.License, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseService) Mutate(ctx context.Context, id uuid.UUID, req services.MutateRequest) (*models.License, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLicenseService) List(ctx context.Context) ([]*models.License, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockLicenseService) Get(ctx context.Context, id uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

type MockDeviceService struct {
	mock.Mock
}

func (m *MockDeviceService) List(ctx context.Context) ([]*models.Device, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Device), args.Error(1)
}

func (m *MockDeviceService) Details(ctx context.Context, id uuid.UUID) (*models.DeviceDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeviceDetails), args.Error(1)
}

func (m *MockDeviceService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Start(ctx context.Context, req services.StartSessionRequest) (*models.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) End(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) List(ctx context.Context, filter models.SessionFilter) ([]*models.Session, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Session), args.Error(1)
}

type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) LogReceipt(ctx context.Context, req services.ReceiptRequest) (*models.Receipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Receipt), args.Error(1)
}

func (m *MockUsageService) DailyStats(ctx context.Context, startDate, endDate string) ([]*models.DailyTotal, error) {
	args := m.Called(ctx, startDate, endDate)
	return args.Get(0).([]*models.DailyTotal), args.Error(1)
}

func (m *MockUsageService) CompanyStats(ctx context.Context, licenseID *uuid.UUID) ([]*models.CompanyStat, error) {
	args := m.Called(ctx, licenseID)
	return args.Get(0).([]*models.CompanyStat), args.Error(1)
}

func (m *MockUsageService) DashboardToday(ctx context.Context) (*models.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func (m *MockUsageService) Activities(ctx context.Context, filter models.ActivityFilter) ([]*models.ActivityLog, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.ActivityLog), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Rows(ctx context.Context, filter models.ReceiptFilter) ([]*models.ReceiptExportRow, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.ReceiptExportRow), args.Error(1)
}

func (m *MockExportService) Workbook(ctx context.Context, filter models.ReceiptFilter) ([]byte, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]byte), args.Int(1), args.Error(2)
}

func (m *MockExportService) Archive(ctx context.Context, filter models.ReceiptFilter) (*services.ExportArchive, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportArchive), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req services.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*services.AdminClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AdminClaims), args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, id uuid.UUID) (*models.AdminProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminProfile), args.Error(1)
}

func (m *MockAuthService) SeedAdmin(ctx context.Context, username, password, email string) error {
	args := m.Called(ctx, username, password, email)
	return args.Error(0)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error {
	return p.err
}
