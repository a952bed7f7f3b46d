package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

type RouterTestSuite struct {
	suite.Suite
	server   *httptest.Server
	registry *prometheus.Registry
}

func (s *RouterTestSuite) SetupTest() {
	log := logger.NewNoopLogger()
	backend, err := mockapi.New(context.Background(), config.Default().MockAPI, log,
		mockapi.WithPasswordCost(bcrypt.MinCost),
		mockapi.WithScanner(mockapi.NewScanner(mockapi.HashPicker())),
	)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = backend.Close() })

	s.registry = prometheus.NewRegistry()
	r, err := NewRouter(config.Default().MockAPI, log, backend, nil, WithRegistry(s.registry))
	s.Require().NoError(err)
	s.server = httptest.NewServer(r.Engine())
	s.T().Cleanup(s.server.Close)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) do(method, path, token string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.BearerScheme+" "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *RouterTestSuite) decode(resp *http.Response, dst any) {
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(dst))
}

func (s *RouterTestSuite) login(username, password string) string {
	resp := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
		Type  string `json:"type"`
		Role  string `json:"role"`
	}
	s.decode(resp, &body)
	s.Require().NotEmpty(body.Token)
	s.Equal("Bearer", body.Type)
	return body.Token
}

func (s *RouterTestSuite) errorMessage(resp *http.Response) string {
	var body map[string]string
	s.decode(resp, &body)
	return body["error"]
}

func (s *RouterTestSuite) TestLoginFailure() {
	resp := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Invalid username or password", s.errorMessage(resp))
}

func (s *RouterTestSuite) TestProtectedRoutesRequireToken() {
	for _, path := range []string{"/api/scan/history", "/api/analyze/risk-analysis", "/api/report/my-reports", "/api/admin/stats"} {
		resp := s.do(http.MethodGet, path, "", nil)
		s.Equal(http.StatusUnauthorized, resp.StatusCode, path)
		s.Equal("Unauthorized", s.errorMessage(resp), path)
	}

	resp := s.do(http.MethodGet, "/api/scan/history", "not-a-token", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterTestSuite) TestAdminRoutesRequireAdminRole() {
	token := s.login("user", "user123")
	resp := s.do(http.MethodGet, "/api/admin/stats", token, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("Access denied: Admin role required", s.errorMessage(resp))

	admin := s.login("admin", "admin123")
	resp = s.do(http.MethodGet, "/api/admin/users/role/user", admin, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var users models.UserList
	s.decode(resp, &users)
	s.Equal(1, users.TotalUsers)
	s.Equal("user", users.Users[0].Username)

	resp = s.do(http.MethodGet, "/api/admin/health", admin, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var health models.ServiceHealth
	s.decode(resp, &health)
	s.Equal("UP", health.Status)
	s.Equal("Connected", health.Database)
}

func (s *RouterTestSuite) TestScanFlow() {
	token := s.login("user", "user123")

	resp := s.do(http.MethodPost, "/api/scan/perform", token, map[string]string{
		"organizationName": "Acme Bank",
		"targetDomain":     "acme.example",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var scan models.ScanRecord
	s.decode(resp, &scan)
	s.NotEmpty(scan.ID)
	s.Equal(models.ScanStatusCompleted, scan.Status)
	s.NotEmpty(scan.Vulnerabilities)
	level, ok := models.ParseRiskLevel(string(scan.RiskLevel))
	s.True(ok)
	s.Equal(level, scan.RiskLevel)

	resp = s.do(http.MethodGet, "/api/scan/"+string(scan.ID), token, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var fetched models.ScanRecord
	s.decode(resp, &fetched)
	s.Equal(scan.RiskScore, fetched.RiskScore)

	resp = s.do(http.MethodGet, "/api/scan/history", token, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var history []models.ScanRecord
	s.decode(resp, &history)
	s.Len(history, 1)

	resp = s.do(http.MethodGet, "/api/analyze/score-summary", token, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var summary models.ScoreSummary
	s.decode(resp, &summary)
	s.Equal(scan.RiskScore, summary.LatestScore)
	s.NotNil(summary.ScanDate)
}

func (s *RouterTestSuite) TestScanValidation() {
	token := s.login("user", "user123")
	resp := s.do(http.MethodPost, "/api/scan/perform", token, map[string]string{"organizationName": "Acme"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.True(strings.HasPrefix(s.errorMessage(resp), "Scan failed"))
}

func (s *RouterTestSuite) TestForeignReportsForbidden() {
	token := s.login("user", "user123")
	resp := s.do(http.MethodGet, "/api/report/1", token, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("Access denied: You can only view your own reports", s.errorMessage(resp))
}

func (s *RouterTestSuite) TestNoRoute() {
	resp := s.do(http.MethodGet, "/api/nope", "", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("The requested resource was not found", s.errorMessage(resp))
}

func (s *RouterTestSuite) TestRequestIDEchoed() {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/api/auth/health", nil)
	s.Require().NoError(err)
	req.Header.Set(constants.HeaderRequestID, "req-42")
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal("req-42", resp.Header.Get(constants.HeaderRequestID))

	resp2 := s.do(http.MethodGet, "/health/live", "", nil)
	s.NotEmpty(resp2.Header.Get(constants.HeaderRequestID))
}

func (s *RouterTestSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/api/auth/health", "", nil)
	s.do(http.MethodGet, "/api/nope", "", nil)

	resp := s.do(http.MethodGet, "/metrics", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	text := string(raw)
	s.Contains(text, "cyberrisk_mockapi_http_requests_total")
	s.Contains(text, `path="/api/auth/health"`)
	s.Contains(text, `path="not_found"`)
}

func (s *RouterTestSuite) TestReadiness() {
	resp := s.do(http.MethodGet, "/health/ready", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}
