// Package mockapi is a local stand-in for the remote CyberRisk service. It keeps
// users and scans in a gorm database, simulates scans, and issues HS256 bearer
// tokens, so the client layer can be exercised end to end without the real
// backend.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/internal/domain/service"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// ServiceVersion is reported by the admin health endpoint.
const ServiceVersion = "1.0.0"

// ================================================================================
// Errors
// ================================================================================

// APIError is a failure with the status and message the HTTP layer reports.
type APIError struct {
	Status  int
	Message string
	cause   error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.cause }

func badRequest(message string, cause error) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message, cause: cause}
}

// failed prefixes the cause like the real service does ("Scan failed: ...").
func failed(prefix string, cause error) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: prefix + ": " + cause.Error(), cause: cause}
}

var (
	ErrInvalidCredentials = &APIError{Status: http.StatusBadRequest, Message: "Invalid username or password"}
	ErrUsernameTaken      = &APIError{Status: http.StatusBadRequest, Message: "Username already exists"}
	ErrEmailTaken         = &APIError{Status: http.StatusBadRequest, Message: "Email already exists"}
	ErrReportAccessDenied = &APIError{Status: http.StatusForbidden, Message: "Access denied: You can only view your own reports"}
	ErrUnauthorized       = &APIError{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrAdminRequired      = &APIError{Status: http.StatusForbidden, Message: "Access denied: Admin role required"}
)

// ================================================================================
// Inputs
// ================================================================================

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Organization string `json:"organization"`
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ScanInput is the body of POST /scan/perform.
type ScanInput struct {
	OrganizationName string `json:"organizationName" binding:"required"`
	TargetDomain     string `json:"targetDomain" binding:"required"`
	TargetIP         string `json:"targetIp"`
	ScanType         string `json:"scanType"`
}

// ================================================================================
// Backend
// ================================================================================

// Backend implements the behaviour behind every mock endpoint.
type Backend struct {
	db        *gorm.DB
	users     UserRepository
	scans     ScanRepository
	scanner   *Scanner
	tokens    *TokenIssuer
	scanDelay atomic.Int64
	hashCost  int
	log       logger.Logger
	now       func() time.Time
}

// Option customizes a Backend.
type Option func(*Backend)

// WithScanner replaces the scanner.
func WithScanner(s *Scanner) Option {
	return func(b *Backend) { b.scanner = s }
}

// WithClock replaces the time source used for scan dates and token issuance.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
		b.tokens.now = now
	}
}

// WithPasswordCost sets the bcrypt cost used for new accounts.
func WithPasswordCost(cost int) Option {
	return func(b *Backend) { b.hashCost = cost }
}

// New opens the configured database, seeds the demo accounts and returns a
// ready Backend.
func New(ctx context.Context, cfg config.MockAPIConfig, log logger.Logger, opts ...Option) (*Backend, error) {
	tokens, err := NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	db, err := OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	picker := RandomPicker()
	if cfg.DeterministicScans {
		picker = HashPicker()
	}

	b := &Backend{
		db:        db,
		users:     NewUserRepository(db),
		scans:     NewScanRepository(db),
		scanner:   NewScanner(picker),
		tokens:    tokens,
		hashCost:  bcrypt.DefaultCost,
		log:       log.WithComponent("mockapi"),
		now:       time.Now,
	}
	b.SetScanDelay(cfg.ScanDelay)
	for _, opt := range opts {
		opt(b)
	}

	if err := b.Seed(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

// SetScanDelay changes how long each simulated scan takes.
func (b *Backend) SetScanDelay(d time.Duration) {
	b.scanDelay.Store(int64(d))
}

// Close releases the database.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (b *Backend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type seedUser struct {
	username, password, email, first, last, org string
	role                                        models.Role
}

var demoUsers = []seedUser{
	{"admin", "admin123", "admin@cyberrisk.com", "System", "Administrator", "CyberRisk", models.RoleAdmin},
	{"user", "user123", "user@cyberrisk.com", "Demo", "User", "Demo Company", models.RoleUser},
}

// Seed creates the demo accounts that do not exist yet.
func (b *Backend) Seed(ctx context.Context) error {
	for _, s := range demoUsers {
		exists, err := b.users.UsernameExists(ctx, s.username)
		if err != nil {
			return fmt.Errorf("failed to check seed user %q: %w", s.username, err)
		}
		if exists {
			continue
		}
		if _, err := b.createUser(ctx, s.username, s.email, s.password, s.first, s.last, s.org, s.role); err != nil {
			return fmt.Errorf("failed to seed user %q: %w", s.username, err)
		}
		b.log.Info(ctx, "seeded demo user", logger.String("username", s.username), logger.String("role", string(s.role)))
	}
	return nil
}

func (b *Backend) createUser(ctx context.Context, username, email, password, first, last, org string, role models.Role) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.hashCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    first,
		LastName:     last,
		Organization: org,
		Role:         role,
		Enabled:      true,
		CreatedAt:    b.now(),
	}
	if err := b.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ================================================================================
// Authentication
// ================================================================================

// Login verifies the credentials and issues a token.
func (b *Backend) Login(ctx context.Context, in LoginInput) (string, *User, error) {
	u, err := b.users.FindByUsername(ctx, in.Username)
	if err != nil || !u.Enabled {
		b.log.Warn(ctx, "login rejected", logger.String("username", in.Username))
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		b.log.Warn(ctx, "login rejected", logger.String("username", in.Username))
		return "", nil, ErrInvalidCredentials
	}

	token, err := b.tokens.Issue(u.Username, u.Role)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	now := b.now()
	if err := b.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		b.log.Warn(ctx, "failed to record last login", logger.Err(err))
	} else {
		u.LastLogin = &now
	}
	b.log.Info(ctx, "login succeeded", logger.String("username", u.Username), logger.String("role", string(u.Role)))
	return token, u, nil
}

// Register creates a USER account and signs it in.
func (b *Backend) Register(ctx context.Context, in RegisterInput) (string, *User, error) {
	taken, err := b.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return "", nil, failed("Registration failed", err)
	}
	if taken {
		return "", nil, ErrUsernameTaken
	}
	taken, err = b.users.EmailExists(ctx, in.Email)
	if err != nil {
		return "", nil, failed("Registration failed", err)
	}
	if taken {
		return "", nil, ErrEmailTaken
	}

	u, err := b.createUser(ctx, in.Username, in.Email, in.Password, in.FirstName, in.LastName, in.Organization, models.RoleUser)
	if err != nil {
		return "", nil, failed("Registration failed", err)
	}
	token, err := b.tokens.Issue(u.Username, u.Role)
	if err != nil {
		return "", nil, failed("Registration failed", err)
	}
	b.log.Info(ctx, "user registered", logger.String("username", u.Username))
	return token, u, nil
}

// Authenticate resolves a bearer token to its user.
func (b *Backend) Authenticate(ctx context.Context, raw string) (*User, error) {
	claims, err := b.tokens.Verify(raw)
	if err != nil {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: ErrUnauthorized.Message, cause: err}
	}
	u, err := b.users.FindByUsername(ctx, claims.Subject)
	if err != nil || !u.Enabled {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// ================================================================================
// Scans
// ================================================================================

// PerformScan runs a simulated scan for user and stores the result.
func (b *Backend) PerformScan(ctx context.Context, user *User, in ScanInput) (*ScanResult, error) {
	if strings.TrimSpace(in.OrganizationName) == "" || strings.TrimSpace(in.TargetDomain) == "" {
		return nil, badRequest("Scan failed: organization name and target domain are required", nil)
	}

	scan := &ScanResult{
		UserID:           user.ID,
		OrganizationName: in.OrganizationName,
		TargetDomain:     in.TargetDomain,
		TargetIP:         in.TargetIP,
		ScanDate:         b.now(),
		Status:           models.ScanStatusInProgress,
	}
	if err := b.scans.Save(ctx, scan); err != nil {
		return nil, failed("Scan failed", err)
	}

	if delay := time.Duration(b.scanDelay.Load()); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			b.markFailed(scan)
			return nil, failed("Scan failed", ctx.Err())
		}
	}

	a := b.scanner.Assess(in.OrganizationName, in.TargetDomain)
	scan.RiskScore = a.RiskScore
	scan.RiskLevel = strings.ToUpper(string(a.RiskLevel))
	scan.ScanSummary = Summary(scan.OrganizationName, scan.TargetDomain, scan.ScanDate, a)
	scan.Status = models.ScanStatusCompleted
	if err := scan.setFindings(a.Vulnerabilities, a.Recommendations); err != nil {
		b.markFailed(scan)
		return nil, failed("Scan failed", err)
	}
	if err := b.scans.Save(ctx, scan); err != nil {
		b.markFailed(scan)
		return nil, failed("Scan failed", err)
	}

	b.log.Info(ctx, "scan completed",
		logger.String("organization", scan.OrganizationName),
		logger.String("domain", scan.TargetDomain),
		logger.Int("risk_score", scan.RiskScore),
	)
	return scan, nil
}

func (b *Backend) markFailed(scan *ScanResult) {
	scan.Status = models.ScanStatusFailed
	if err := b.scans.Save(context.Background(), scan); err != nil {
		b.log.Warn(context.Background(), "failed to mark scan as failed", logger.Err(err))
	}
}

// GetScan returns one scan by its numeric id. Any authenticated user may read
// any scan.
func (b *Backend) GetScan(ctx context.Context, rawID string) (*ScanResult, error) {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return nil, failed("Failed to retrieve scan result", fmt.Errorf("invalid scan id %q", rawID))
	}
	scan, err := b.scans.FindByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, errNotFound) {
			err = fmt.Errorf("Scan result not found: %s", rawID)
		}
		return nil, failed("Failed to retrieve scan result", err)
	}
	return scan, nil
}

// History returns every scan owned by user in insertion order.
func (b *Backend) History(ctx context.Context, user *User) ([]models.ScanRecord, error) {
	scans, err := b.scans.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, failed("Failed to retrieve scan history", err)
	}
	return records(scans), nil
}

func records(scans []ScanResult) []models.ScanRecord {
	out := make([]models.ScanRecord, 0, len(scans))
	for i := range scans {
		out = append(out, scans[i].Record())
	}
	return out
}

// ================================================================================
// Analysis
// ================================================================================

// RiskAnalysis summarizes how user's scores move over time.
func (b *Backend) RiskAnalysis(ctx context.Context, user *User) (models.RiskAnalysis, error) {
	scans, err := b.scans.ListByUser(ctx, user.ID)
	if err != nil {
		return models.RiskAnalysis{}, failed("Failed to perform risk analysis", err)
	}
	analysis := models.RiskAnalysis{
		UserID:       userID(user),
		Username:     user.Username,
		Organization: user.Organization,
	}
	recs := records(scans)
	analysis.Trend = service.AnalyzeTrend(recs)
	if len(recs) == 0 {
		return analysis, nil
	}

	stats := service.CalculateRiskStats(recs)
	analysis.AverageScore = stats.AverageScore
	analysis.TotalScans = stats.TotalScans
	return analysis, nil
}

// ScoreSummary reports the score of user's most recently stored scan. The
// level keeps its enum spelling.
func (b *Backend) ScoreSummary(ctx context.Context, user *User) (models.ScoreSummary, error) {
	scans, err := b.scans.ListByUser(ctx, user.ID)
	if err != nil {
		return models.ScoreSummary{}, failed("Failed to get score summary", err)
	}
	summary := models.ScoreSummary{
		UserID:     userID(user),
		TotalScans: len(scans),
		RiskLevel:  "No scans performed",
	}
	if len(scans) == 0 {
		summary.Organization = user.Organization
		return summary, nil
	}
	latest := scans[len(scans)-1]
	date := models.NewTimestamp(latest.ScanDate)
	summary.LatestScore = latest.RiskScore
	summary.RiskLevel = latest.RiskLevel
	summary.ScanDate = &date
	summary.Organization = latest.OrganizationName
	return summary, nil
}

// ================================================================================
// Reports
// ================================================================================

// Reports lists the scans of the account with the given numeric id. Only the
// owner and admins may read them.
func (b *Backend) Reports(ctx context.Context, caller *User, rawID string) (models.ReportList, error) {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return models.ReportList{}, failed("Failed to retrieve reports", fmt.Errorf("invalid user id %q", rawID))
	}
	if caller.ID != uint(id) && caller.Role != models.RoleAdmin {
		return models.ReportList{}, ErrReportAccessDenied
	}
	scans, err := b.scans.ListByUser(ctx, uint(id))
	if err != nil {
		return models.ReportList{}, failed("Failed to retrieve reports", err)
	}
	recs := records(scans)
	return models.ReportList{UserID: models.ID(rawID), Reports: recs, TotalReports: len(recs)}, nil
}

// MyReports lists the caller's own scans.
func (b *Backend) MyReports(ctx context.Context, user *User) (models.ReportList, error) {
	scans, err := b.scans.ListByUser(ctx, user.ID)
	if err != nil {
		return models.ReportList{}, failed("Failed to retrieve your reports", err)
	}
	recs := records(scans)
	return models.ReportList{
		UserID:       userID(user),
		Username:     user.Username,
		Organization: user.Organization,
		Reports:      recs,
		TotalReports: len(recs),
	}, nil
}

// Comprehensive aggregates every scan the caller owns. The distribution is
// keyed by display name ("Critical Risk") and the latest scan is the most
// recently stored one.
func (b *Backend) Comprehensive(ctx context.Context, user *User) (models.ComprehensiveReport, error) {
	scans, err := b.scans.ListByUser(ctx, user.ID)
	if err != nil {
		return models.ComprehensiveReport{}, failed("Failed to generate comprehensive report", err)
	}
	report := models.ComprehensiveReport{
		UserID:       userID(user),
		Username:     user.Username,
		Organization: user.Organization,
		GeneratedAt:  models.NewTimestamp(b.now()),
	}
	if len(scans) == 0 {
		report.Message = "No scan reports available"
		return report, nil
	}

	recs := records(scans)
	stats := service.CalculateRiskStats(recs)
	report.AverageScore = stats.AverageScore
	report.HighestScore = stats.HighestScore
	report.LowestScore = stats.LowestScore
	report.TotalScans = stats.TotalScans
	latest := recs[len(recs)-1]
	report.LatestScan = &latest
	report.RiskLevelDistribution = map[models.RiskLevel]int{}
	for i := range scans {
		report.RiskLevelDistribution[models.RiskLevel(scans[i].Level().DisplayName())]++
	}
	return report, nil
}

// ================================================================================
// Administration
// ================================================================================

// SystemStats reports account and scan totals.
func (b *Backend) SystemStats(ctx context.Context, admin *User) (models.SystemStats, error) {
	fail := func(err error) (models.SystemStats, error) {
		return models.SystemStats{}, failed("Failed to retrieve system statistics", err)
	}

	total, err := b.users.Count(ctx)
	if err != nil {
		return fail(err)
	}
	admins, err := b.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fail(err)
	}
	regular, err := b.users.CountByRole(ctx, models.RoleUser)
	if err != nil {
		return fail(err)
	}
	scans, err := b.scans.List(ctx)
	if err != nil {
		return fail(err)
	}

	stats := models.SystemStats{
		TotalUsers:   int(total),
		AdminUsers:   int(admins),
		RegularUsers: int(regular),
		TotalScans:   len(scans),
		LastUpdated:  models.NewTimestamp(b.now()),
		AdminUser:    admin.Username,
	}
	sum := 0
	for i := range scans {
		sum += scans[i].RiskScore
		switch scans[i].Level() {
		case models.RiskLevelCritical:
			stats.CriticalRiskScans++
		case models.RiskLevelHigh:
			stats.HighRiskScans++
		case models.RiskLevelMedium:
			stats.MediumRiskScans++
		case models.RiskLevelLow:
			stats.LowRiskScans++
		}
	}
	if len(scans) > 0 {
		stats.AverageRiskScore = int(math.Floor(float64(sum)/float64(len(scans)) + 0.5))
	}
	return stats, nil
}

// Users lists every account.
func (b *Backend) Users(ctx context.Context) (models.UserList, error) {
	users, err := b.users.List(ctx)
	if err != nil {
		return models.UserList{}, failed("Failed to retrieve users", err)
	}
	return userList(users, ""), nil
}

// UsersByRole lists the accounts holding role, matched case-insensitively.
func (b *Backend) UsersByRole(ctx context.Context, rawRole string) (models.UserList, error) {
	role := models.Role(strings.ToUpper(rawRole))
	if role != models.RoleAdmin && role != models.RoleUser {
		return models.UserList{}, failed("Failed to retrieve users by role", fmt.Errorf("unknown role %q", rawRole))
	}
	users, err := b.users.ListByRole(ctx, role)
	if err != nil {
		return models.UserList{}, failed("Failed to retrieve users by role", err)
	}
	return userList(users, role), nil
}

func userList(users []User, role models.Role) models.UserList {
	list := models.UserList{Users: make([]models.UserInfo, 0, len(users)), Role: role, TotalUsers: len(users)}
	for i := range users {
		list.Users = append(list.Users, users[i].Info())
	}
	return list
}

// AuthHealth is the unauthenticated liveness report.
func (b *Backend) AuthHealth() models.ServiceHealth {
	return models.ServiceHealth{
		Status:    "UP",
		Service:   "CyberRisk Authentication Service",
		Timestamp: models.NewTimestamp(b.now()),
	}
}

// SystemHealth reports database connectivity and totals.
func (b *Backend) SystemHealth(ctx context.Context) (models.ServiceHealth, error) {
	health := models.ServiceHealth{
		Status:    "UP",
		Service:   "CyberRisk Backend",
		Database:  "Connected",
		Version:   ServiceVersion,
		Timestamp: models.NewTimestamp(b.now()),
	}
	if err := b.Ping(ctx); err != nil {
		return models.ServiceHealth{}, failed("Health check failed", err)
	}
	users, err := b.users.Count(ctx)
	if err != nil {
		return models.ServiceHealth{}, failed("Health check failed", err)
	}
	scans, err := b.scans.Count(ctx)
	if err != nil {
		return models.ServiceHealth{}, failed("Health check failed", err)
	}
	health.TotalUsers = int(users)
	health.TotalScans = int(scans)
	return health, nil
}

func userID(u *User) models.ID {
	return models.ID(strconv.FormatUint(uint64(u.ID), 10))
}
