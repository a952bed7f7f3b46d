package cyberrisk

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/internal/infrastructure/persistence/memory"
	"github.com/turtacn/cyberrisk/internal/interfaces/http/router"
	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// ClientTestSuite drives the SDK against the mock API over real HTTP.
type ClientTestSuite struct {
	suite.Suite
	ctx      context.Context
	server   *httptest.Server
	store    KeyValueStore
	registry *prometheus.Registry
	expired  atomic.Int32
	client   *Client
}

func (s *ClientTestSuite) SetupTest() {
	s.ctx = context.Background()
	log := logger.NewNoopLogger()

	backend, err := mockapi.New(s.ctx, config.Default().MockAPI, log,
		mockapi.WithPasswordCost(bcrypt.MinCost),
		mockapi.WithScanner(mockapi.NewScanner(mockapi.HashPicker())),
	)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = backend.Close() })

	r, err := router.NewRouter(config.Default().MockAPI, log, backend, nil)
	s.Require().NoError(err)
	s.server = httptest.NewServer(r.Engine())
	s.T().Cleanup(s.server.Close)

	cfg := DefaultConfig()
	cfg.API.BaseURL = s.server.URL + router.APIPrefix
	cfg.API.Timeout = 5 * time.Second

	s.store = memory.NewKVStore()
	s.registry = prometheus.NewRegistry()
	s.expired.Store(0)
	s.client, err = New(s.ctx, cfg,
		WithStore(s.store),
		WithLogger(log),
		WithRegisterer(s.registry),
		WithSessionExpiredHook(func(context.Context) { s.expired.Add(1) }),
	)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = s.client.Close(context.Background()) })
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) login(username, password string) {
	res := s.client.Session.Login(s.ctx, username, password)
	s.Require().True(res.Success, res.Error)
}

func (s *ClientTestSuite) TestLoginPersistsSession() {
	res := s.client.Session.Login(s.ctx, "user", "user123")
	s.Require().True(res.Success, res.Error)
	s.Equal("user", res.Data.Username)

	s.True(s.client.Session.IsAuthenticated(s.ctx))
	s.False(s.client.Session.IsAdmin(s.ctx))
	profile := s.client.Session.GetCurrentUser(s.ctx)
	s.Require().NotNil(profile)
	s.Equal("Demo Company", profile.Organization)
	exp, ok := s.client.Session.TokenExpiry(s.ctx)
	s.True(ok)
	s.True(exp.After(time.Now()))

	s.client.Session.Logout(s.ctx)
	s.False(s.client.Session.IsAuthenticated(s.ctx))
	s.Nil(s.client.Session.GetCurrentUser(s.ctx))
}

func (s *ClientTestSuite) TestLoginFailureSurfacesServerMessage() {
	res := s.client.Session.Login(s.ctx, "user", "wrong-password")
	s.False(res.Success)
	s.Equal("Invalid username or password", res.Error)
	s.False(s.client.Session.IsAuthenticated(s.ctx))
}

func (s *ClientTestSuite) TestRegister() {
	res := s.client.Session.Register(s.ctx, &RegisterRequest{
		Username:        "newbie",
		Email:           "newbie@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FirstName:       "New",
		LastName:        "User",
		Organization:    "Initech",
	})
	s.Require().True(res.Success, res.Error)
	s.True(s.client.Session.IsAuthenticated(s.ctx))

	dup := s.client.Session.Register(s.ctx, &RegisterRequest{
		Username:        "newbie",
		Email:           "other@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FirstName:       "New",
		LastName:        "User",
	})
	s.False(dup.Success)
	s.Equal("Username already exists", dup.Error)
}

func (s *ClientTestSuite) TestScanAndAnalysisFlow() {
	s.login("user", "user123")

	first := s.client.Scans.PerformScan(s.ctx, "Acme Bank", "bank.example", "")
	s.Require().True(first.Success, first.Error)
	s.Equal(models.ScanStatusCompleted, first.Data.Status)
	second := s.client.Scans.PerformScan(s.ctx, "Acme", "acme.example", "10.0.0.1")
	s.Require().True(second.Success, second.Error)

	got := s.client.Scans.GetScanResult(s.ctx, string(first.Data.ID))
	s.Require().True(got.Success, got.Error)
	s.Equal(first.Data.RiskScore, got.Data.RiskScore)

	history := s.client.Scans.GetScanHistory(s.ctx)
	s.Require().True(history.Success, history.Error)
	s.Len(history.Data, 2)

	latest := s.client.Scans.GetLatestScan(s.ctx)
	s.Require().True(latest.Success, latest.Error)
	s.Equal(second.Data.ID, latest.Data.ID)

	stats := CalculateRiskStats(history.Data)
	s.Equal(2, stats.TotalScans)
	s.Len(GetRiskTrendData(history.Data), 2)

	analysis := s.client.Analysis.GetRiskAnalysis(s.ctx)
	s.Require().True(analysis.Success, analysis.Error)
	s.Equal(2, analysis.Data.TotalScans)
	s.Equal(AnalyzeTrend(history.Data), analysis.Data.Trend)

	summary := s.client.Analysis.GetScoreSummary(s.ctx)
	s.Require().True(summary.Success, summary.Error)
	s.Equal(second.Data.RiskScore, summary.Data.LatestScore)

	dash := s.client.Dashboard.Load(s.ctx)
	s.NoError(dash.Err)
	s.True(dash.History.Success)
	s.True(dash.ScoreSummary.Success)
	s.True(dash.RiskAnalysis.Success)
	s.Equal(stats, dash.Statistics)
	s.Require().NotNil(dash.Latest)
	s.Equal(second.Data.ID, dash.Latest.ID)

	mine := s.client.Reports.GetMyReports(s.ctx)
	s.Require().True(mine.Success, mine.Error)
	s.Equal(2, mine.Data.TotalReports)

	full := s.client.Reports.GetComprehensiveReport(s.ctx)
	s.Require().True(full.Success, full.Error)
	s.Equal(2, full.Data.TotalScans)
	s.Equal(stats.AverageScore, full.Data.AverageScore)
}

func (s *ClientTestSuite) TestLatestScanWithoutHistory() {
	s.login("user", "user123")
	latest := s.client.Scans.GetLatestScan(s.ctx)
	s.False(latest.Success)
	s.Equal("No scans found", latest.Error)
}

func (s *ClientTestSuite) TestAdminGateways() {
	s.login("user", "user123")
	denied := s.client.Admin.GetSystemStats(s.ctx)
	s.False(denied.Success)
	s.Equal("Access denied: Admin role required", denied.Error)
	s.True(s.client.Session.IsAuthenticated(s.ctx), "403 keeps the session")

	foreign := s.client.Reports.GetUserReports(s.ctx, "1")
	s.False(foreign.Success)
	s.Equal("Access denied: You can only view your own reports", foreign.Error)

	s.login("admin", "admin123")
	s.True(s.client.Session.IsAdmin(s.ctx))

	stats := s.client.Admin.GetSystemStats(s.ctx)
	s.Require().True(stats.Success, stats.Error)
	s.Equal(2, stats.Data.TotalUsers)
	s.Equal("admin", stats.Data.AdminUser)

	users := s.client.Admin.GetAllUsers(s.ctx)
	s.Require().True(users.Success, users.Error)
	s.Equal(2, users.Data.TotalUsers)

	admins := s.client.Admin.GetUsersByRole(s.ctx, models.RoleAdmin)
	s.Require().True(admins.Success, admins.Error)
	s.Equal(1, admins.Data.TotalUsers)

	health := s.client.Admin.GetSystemHealth(s.ctx)
	s.Require().True(health.Success, health.Error)
	s.Equal("UP", health.Data.Status)
}

func (s *ClientTestSuite) TestExpiredSessionIsCleared() {
	s.login("user", "user123")
	s.Require().NoError(s.store.Set(s.ctx, constants.StorageKeyToken, "tampered"))

	res := s.client.Scans.GetScanHistory(s.ctx)
	s.False(res.Success)
	s.False(s.client.Session.IsAuthenticated(s.ctx))
	s.Nil(s.client.Session.GetCurrentUser(s.ctx))
	s.Equal(int32(1), s.expired.Load())
}

func (s *ClientTestSuite) TestHealthCheckAndMetrics() {
	health := s.client.Session.HealthCheck(s.ctx)
	s.Require().True(health.Success, health.Error)
	s.Equal("UP", health.Data.Status)

	families, err := s.registry.Gather()
	s.Require().NoError(err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	s.Contains(names, "cyberrisk_client_requests_total")
}

func TestAnalyticsHelpers(t *testing.T) {
	assert.Equal(t, models.RiskLevelCritical, ClassifyScore(85).Level)
	assert.Equal(t, "Medium Risk", ClassifyScore(40).DisplayName)
	assert.InDelta(t, 180.0, DegreesForScore(50), 0.001)
	_, ok := LatestScan(nil)
	assert.False(t, ok)
	assert.Equal(t, models.TrendNoData, AnalyzeTrend(nil))
}
