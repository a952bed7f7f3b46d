package mockapi

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/cyberrisk/internal/domain/models"
)

// ================================================================================
// Entities
// ================================================================================

// User is an account known to the mock service.
type User struct {
	ID           uint        `gorm:"primaryKey"`
	Username     string      `gorm:"size:64;uniqueIndex;not null"`
	Email        string      `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string      `gorm:"not null"`
	FirstName    string      `gorm:"size:128"`
	LastName     string      `gorm:"size:128"`
	Organization string      `gorm:"size:255"`
	Role         models.Role `gorm:"size:16;index;not null"`
	Enabled      bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// TableName pins the table name.
func (User) TableName() string { return "users" }

// Profile converts u into the profile returned by the auth endpoints.
func (u *User) Profile() models.UserProfile {
	return models.UserProfile{
		ID:           models.ID(strconv.FormatUint(uint64(u.ID), 10)),
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Organization: u.Organization,
		Role:         u.Role,
		Type:         "Bearer",
	}
}

// Info converts u into the admin listing entry.
func (u *User) Info() models.UserInfo {
	info := models.UserInfo{
		ID:           models.ID(strconv.FormatUint(uint64(u.ID), 10)),
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Organization: u.Organization,
		Role:         u.Role,
		Enabled:      u.Enabled,
		CreatedAt:    models.NewTimestamp(u.CreatedAt),
	}
	if u.LastLogin != nil {
		ts := models.NewTimestamp(*u.LastLogin)
		info.LastLogin = &ts
	}
	return info
}

// ScanResult is a persisted scan. Findings are stored as JSON documents.
type ScanResult struct {
	ID                  uint   `gorm:"primaryKey"`
	UserID              uint   `gorm:"index;not null"`
	OrganizationName    string `gorm:"size:255;not null"`
	TargetDomain        string `gorm:"size:255;not null"`
	TargetIP            string `gorm:"size:64"`
	ScanDate            time.Time
	Status              models.ScanStatus `gorm:"size:16"`
	RiskScore           int
	RiskLevel           string `gorm:"size:16"` // enum spelling, e.g. CRITICAL
	VulnerabilitiesJSON string `gorm:"column:vulnerabilities;type:text"`
	RecommendationsJSON string `gorm:"column:recommendations;type:text"`
	ScanSummary         string `gorm:"type:text"`
}

// TableName pins the table name.
func (ScanResult) TableName() string { return "scan_results" }

// Level returns the canonical level of the stored enum.
func (s *ScanResult) Level() models.RiskLevel {
	level, _ := models.ParseRiskLevel(s.RiskLevel)
	return level
}

// Record converts s into its wire form.
func (s *ScanResult) Record() models.ScanRecord {
	rec := models.ScanRecord{
		ID:               models.ID(strconv.FormatUint(uint64(s.ID), 10)),
		OrganizationName: s.OrganizationName,
		TargetDomain:     s.TargetDomain,
		TargetIP:         s.TargetIP,
		ScanDate:         models.NewTimestamp(s.ScanDate),
		Status:           s.Status,
		RiskScore:        s.RiskScore,
		RiskLevel:        models.RiskLevel(s.RiskLevel),
		ScanSummary:      s.ScanSummary,
		Vulnerabilities:  []models.Vulnerability{},
		Recommendations:  []models.Recommendation{},
	}
	if s.VulnerabilitiesJSON != "" {
		_ = json.Unmarshal([]byte(s.VulnerabilitiesJSON), &rec.Vulnerabilities)
	}
	if s.RecommendationsJSON != "" {
		_ = json.Unmarshal([]byte(s.RecommendationsJSON), &rec.Recommendations)
	}
	if rec.Vulnerabilities == nil {
		rec.Vulnerabilities = []models.Vulnerability{}
	}
	if rec.Recommendations == nil {
		rec.Recommendations = []models.Recommendation{}
	}
	return rec
}

func (s *ScanResult) setFindings(vulns []models.Vulnerability, recs []models.Recommendation) error {
	v, err := json.Marshal(vulns)
	if err != nil {
		return err
	}
	r, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	s.VulnerabilitiesJSON = string(v)
	s.RecommendationsJSON = string(r)
	return nil
}

// ================================================================================
// Database
// ================================================================================

//go:embed migrations
var migrationsFS embed.FS

// OpenDatabase connects to the configured database and applies the schema
// migrations. An empty sqlite DSN yields a private in-memory database.
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var (
		dialector gorm.Dialector
		dialect   goose.Dialect
	)
	switch driver {
	case "", "sqlite":
		driver = "sqlite"
		if dsn == "" {
			dsn = fmt.Sprintf("file:mockapi-%s?mode=memory&cache=shared", uuid.NewString())
		}
		dialector = sqlite.Open(dsn)
		dialect = goose.DialectSQLite3
	case "postgres":
		connCfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres dsn: %w", err)
		}
		dialector = postgres.New(postgres.Config{Conn: stdlib.OpenDB(*connCfg)})
		dialect = goose.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := migrate(db, dialect, driver); err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return db, nil
}

func migrate(db *gorm.DB, dialect goose.Dialect, dir string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	fsys, err := fs.Sub(migrationsFS, path.Join("migrations", dir))
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ================================================================================
// Repositories
// ================================================================================

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	List(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role models.Role) ([]User, error)
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// ScanRepository persists scan results.
type ScanRepository interface {
	Save(ctx context.Context, scan *ScanResult) error
	FindByID(ctx context.Context, id uint) (*ScanResult, error)
	ListByUser(ctx context.Context, userID uint) ([]ScanResult, error)
	List(ctx context.Context) ([]ScanResult, error)
	Count(ctx context.Context) (int64, error)
}

// errNotFound is returned by lookups that matched no row.
var errNotFound = errors.New("record not found")

type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a gorm-backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Take(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *gormUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

func (r *gormUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *gormUserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *gormUserRepository) List(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (r *gormUserRepository) ListByRole(ctx context.Context, role models.Role) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("id").Find(&users).Error
	return users, err
}

func (r *gormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).Count(&n).Error
	return n, err
}

func (r *gormUserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}

type gormScanRepository struct {
	db *gorm.DB
}

// NewScanRepository returns a gorm-backed ScanRepository.
func NewScanRepository(db *gorm.DB) ScanRepository {
	return &gormScanRepository{db: db}
}

func (r *gormScanRepository) Save(ctx context.Context, scan *ScanResult) error {
	return r.db.WithContext(ctx).Save(scan).Error
}

func (r *gormScanRepository) FindByID(ctx context.Context, id uint) (*ScanResult, error) {
	var s ScanResult
	if err := r.db.WithContext(ctx).Take(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// ListByUser returns scans in insertion order.
func (r *gormScanRepository) ListByUser(ctx context.Context, userID uint) ([]ScanResult, error) {
	var scans []ScanResult
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&scans).Error
	return scans, err
}

func (r *gormScanRepository) List(ctx context.Context) ([]ScanResult, error) {
	var scans []ScanResult
	err := r.db.WithContext(ctx).Order("id").Find(&scans).Error
	return scans, err
}

func (r *gormScanRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ScanResult{}).Count(&n).Error
	return n, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errNotFound
	}
	return err
}
