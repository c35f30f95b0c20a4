package services

import (
	"context"
	"testing"
	"time"

	"receiptpanel/internal/metrics"
	"receiptpanel/internal/models"
	"receiptpanel/internal/repositories"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SessionServiceTestSuite struct {
	suite.Suite
	mocks   *mockRepos
	uow     *fakeUnitOfWork
	metrics *metrics.Metrics
	service SessionService
	ctx     context.Context
}

func (suite *SessionServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mocks = newMockRepos()
	suite.uow = &fakeUnitOfWork{repos: suite.mocks.repos}
	suite.metrics = metrics.New(prometheus.NewRegistry())

	svc := NewSessionService(suite.mocks.repos, suite.uow, suite.metrics, discardLogger()).(*sessionService)
	svc.now = func() time.Time { return fixedNow }
	suite.service = svc
}

func (suite *SessionServiceTestSuite) TearDownTest() {
	suite.mocks.AssertExpectations(suite.T())
}

func TestSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}

func (suite *SessionServiceTestSuite) activeLicense(maxDevices int) *models.License {
	return &models.License{
		ID:         uuid.New(),
		LicenseKey: "KEY",
		MaxDevices: maxDevices,
		Status:     models.LicenseStatusActive,
		ExpiresAt:  fixedNow.Add(30 * 24 * time.Hour),
	}
}

func (suite *SessionServiceTestSuite) TestStart_WithKnownDeviceID() {
	license := suite.activeLicense(1)
	device := &models.Device{ID: uuid.New(), LicenseID: license.ID, HardwareID: "HW-1", PCName: "KASA-1"}

	suite.mocks.licenses.On("GetByKeyForUpdate", suite.ctx, "KEY").Return(license, nil)
	suite.mocks.devices.On("GetByID", suite.ctx, device.ID).Return(device, nil)
	suite.mocks.sessions.On("Create", suite.ctx, mock.AnythingOfType("*models.Session")).Return(nil)
	suite.mocks.activities.On("Create", suite.ctx, mock.AnythingOfType("*models.ActivityLog")).Return(nil).Run(func(args mock.Arguments) {
		entry := args.Get(1).(*models.ActivityLog)
		assert.Equal(suite.T(), models.ActivityLogin, entry.Action)
		assert.NotNil(suite.T(), entry.SessionID)
	})

	session, err := suite.service.Start(suite.ctx, StartSessionRequest{
		LicenseKey: "KEY",
		HardwareID: "HW-1",
		DeviceID:   device.ID.String(),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), device.ID, session.DeviceID)
	assert.Equal(suite.T(), license.ID, session.LicenseID)
	assert.Equal(suite.T(), "KASA-1", session.PCName)
	assert.Equal(suite.T(), models.SessionStatusActive, session.Status)
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.metrics.SessionsStarted))
	suite.mocks.devices.AssertNotCalled(suite.T(), "GetByHardwareID", mock.Anything, mock.Anything)
}

func (suite *SessionServiceTestSuite) TestStart_RegistersUnknownDevice() {
	license := suite.activeLicense(2)

	suite.mocks.licenses.On("GetByKeyForUpdate", suite.ctx, "KEY").Return(license, nil)
	suite.mocks.devices.On("GetByHardwareID", suite.ctx, "HW-9").Return(nil, repositories.ErrNotFound)
	suite.mocks.devices.On("CountByLicense", suite.ctx, license.ID).Return(0, nil)
	suite.mocks.devices.On("Create", suite.ctx, mock.AnythingOfType("*models.Device")).Return(nil)
	suite.mocks.sessions.On("Create", suite.ctx, mock.AnythingOfType("*models.Session")).Return(nil)
	suite.mocks.activities.On("Create", suite.ctx, mock.AnythingOfType("*models.ActivityLog")).Return(nil)

	session, err := suite.service.Start(suite.ctx, StartSessionRequest{
		LicenseKey: "KEY",
		HardwareID: "HW-9",
		PCName:     "KASA-9",
		DeviceID:   "not-a-uuid",
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "KASA-9", session.PCName)
	suite.mocks.devices.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *SessionServiceTestSuite) TestStart_DeviceCapApplies() {
	license := suite.activeLicense(1)

	suite.mocks.licenses.On("GetByKeyForUpdate", suite.ctx, "KEY").Return(license, nil)
	suite.mocks.devices.On("GetByHardwareID", suite.ctx, "HW-2").Return(nil, repositories.ErrNotFound)
	suite.mocks.devices.On("CountByLicense", suite.ctx, license.ID).Return(1, nil)

	_, err := suite.service.Start(suite.ctx, StartSessionRequest{LicenseKey: "KEY", HardwareID: "HW-2"})
	var limitErr *DeviceLimitError
	assert.ErrorAs(suite.T(), err, &limitErr)
	suite.mocks.sessions.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *SessionServiceTestSuite) TestStart_RefusesUnusableLicense() {
	suspended := suite.activeLicense(3)
	suspended.Status = models.LicenseStatusSuspended

	lapsed := suite.activeLicense(3)
	lapsed.ExpiresAt = fixedNow.Add(-240 * time.Hour)

	for name, license := range map[string]*models.License{"suspended": suspended, "expired": lapsed} {
		suite.Run(name, func() {
			suite.mocks.licenses.On("GetByKeyForUpdate", suite.ctx, "KEY").Return(license, nil).Once()

			session, err := suite.service.Start(suite.ctx, StartSessionRequest{LicenseKey: "KEY", HardwareID: "HW-NEW"})
			assert.Nil(suite.T(), session)
			assert.ErrorIs(suite.T(), err, ErrForbidden)
		})
	}

	suite.mocks.devices.AssertNotCalled(suite.T(), "GetByHardwareID", mock.Anything, mock.Anything)
	suite.mocks.devices.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	suite.mocks.sessions.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	assert.Equal(suite.T(), 0, suite.uow.committed)
}

func (suite *SessionServiceTestSuite) TestStart_UnknownLicense() {
	suite.mocks.licenses.On("GetByKeyForUpdate", suite.ctx, "NOPE").Return(nil, repositories.ErrNotFound)

	_, err := suite.service.Start(suite.ctx, StartSessionRequest{LicenseKey: "NOPE", HardwareID: "HW-1"})
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *SessionServiceTestSuite) TestEnd_ActiveSession() {
	session := &models.Session{
		ID:           uuid.New(),
		DeviceID:     uuid.New(),
		LicenseID:    uuid.New(),
		Status:       models.SessionStatusActive,
		ReceiptCount: 3,
		TotalAmount:  45.5,
	}
	suite.mocks.sessions.On("GetByID", suite.ctx, session.ID).Return(session, nil)
	suite.mocks.sessions.On("End", suite.ctx, session.ID, fixedNow).Return(nil)
	suite.mocks.activities.On("Create", suite.ctx, mock.AnythingOfType("*models.ActivityLog")).Return(nil).Run(func(args mock.Arguments) {
		entry := args.Get(1).(*models.ActivityLog)
		assert.Equal(suite.T(), models.ActivityLogout, entry.Action)
		assert.Equal(suite.T(), "Session ended: 3 receipts, 45.50 total", entry.Details)
	})

	ended, err := suite.service.End(suite.ctx, session.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.SessionStatusEnded, ended.Status)
	require.NotNil(suite.T(), ended.SessionEnd)
	assert.Equal(suite.T(), fixedNow, *ended.SessionEnd)
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.metrics.SessionsEnded))
}

func (suite *SessionServiceTestSuite) TestEnd_AlreadyEndedIsNoop() {
	endedAt := fixedNow.Add(-time.Hour)
	session := &models.Session{ID: uuid.New(), Status: models.SessionStatusEnded, SessionEnd: &endedAt}
	suite.mocks.sessions.On("GetByID", suite.ctx, session.ID).Return(session, nil)

	result, err := suite.service.End(suite.ctx, session.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), endedAt, *result.SessionEnd)
	suite.mocks.sessions.AssertNotCalled(suite.T(), "End", mock.Anything, mock.Anything, mock.Anything)
	suite.mocks.activities.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	assert.Equal(suite.T(), 0.0, testutil.ToFloat64(suite.metrics.SessionsEnded))
}

func (suite *SessionServiceTestSuite) TestEnd_NotFound() {
	id := uuid.New()
	suite.mocks.sessions.On("GetByID", suite.ctx, id).Return(nil, repositories.ErrNotFound)

	_, err := suite.service.End(suite.ctx, id)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *SessionServiceTestSuite) TestList_ClampsLimitAndChecksStatus() {
	suite.mocks.sessions.On("List", suite.ctx, models.SessionFilter{Status: models.SessionStatusActive, Limit: maxSessionLimit}).
		Return([]*models.Session{}, nil)

	_, err := suite.service.List(suite.ctx, models.SessionFilter{Status: models.SessionStatusActive, Limit: 50000})
	assert.NoError(suite.T(), err)

	_, err = suite.service.List(suite.ctx, models.SessionFilter{Status: "paused"})
	assert.ErrorIs(suite.T(), err, ErrValidation)
}
