package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/cyberrisk/internal/application/dto"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/internal/domain/repository"
	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/errors"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// SessionManager owns the persisted session: the bearer token and the
// profile it was issued for. Both are written together and cleared together.
type SessionManager interface {
	// Login exchanges credentials for a session.
	Login(ctx context.Context, username, password string) dto.Result[*dto.AuthResponse]

	// Register creates an account and starts a session for it. Local
	// validation failures return before any request is sent.
	Register(ctx context.Context, req *dto.RegisterRequest) dto.Result[*dto.AuthResponse]

	// Logout clears the session. It is idempotent.
	Logout(ctx context.Context)

	// GetCurrentUser returns the persisted profile, or nil when there is no
	// valid session.
	GetCurrentUser(ctx context.Context) *models.UserProfile

	// IsAuthenticated reports whether a token is persisted.
	IsAuthenticated(ctx context.Context) bool

	// IsAdmin reports whether the current profile has the admin role.
	IsAdmin(ctx context.Context) bool

	// HealthCheck probes the service's liveness endpoint.
	HealthCheck(ctx context.Context) dto.Result[*models.ServiceHealth]

	// GetToken returns the persisted token or "".
	GetToken(ctx context.Context) string

	// TokenExpiry reads the exp claim of the persisted token without
	// verifying it. ok is false when there is no token or no exp claim.
	TokenExpiry(ctx context.Context) (exp time.Time, ok bool)
}

type sessionManagerImpl struct {
	api    APIClient
	store  repository.KeyValueStore
	logger logger.Logger
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(api APIClient, store repository.KeyValueStore, log logger.Logger) SessionManager {
	return &sessionManagerImpl{
		api:    api,
		store:  store,
		logger: log.WithComponent("session"),
	}
}

func (s *sessionManagerImpl) Login(ctx context.Context, username, password string) dto.Result[*dto.AuthResponse] {
	req := &dto.LoginRequest{Username: username, Password: password}
	if err := req.Validate(); err != nil {
		return dto.Fail[*dto.AuthResponse](err, MsgLoginFailed)
	}

	var resp dto.AuthResponse
	if err := s.api.Post(ctx, constants.PathAuthLogin, req, &resp); err != nil {
		s.logger.Warn(ctx, "login failed", logger.String("username", username), logger.Err(err))
		return dto.Fail[*dto.AuthResponse](err, MsgLoginFailed)
	}
	if err := s.persist(ctx, &resp); err != nil {
		return dto.Fail[*dto.AuthResponse](err, MsgLoginFailed)
	}

	s.logger.Info(ctx, "login succeeded", logger.String("username", resp.Username), logger.String("role", string(resp.Role)))
	return dto.Ok(&resp)
}

func (s *sessionManagerImpl) Register(ctx context.Context, req *dto.RegisterRequest) dto.Result[*dto.AuthResponse] {
	if req == nil {
		return dto.Fail[*dto.AuthResponse](errors.ErrValidation("registration details are required"), MsgRegistrationFailed)
	}
	if err := req.Validate(); err != nil {
		return dto.Fail[*dto.AuthResponse](err, MsgRegistrationFailed)
	}

	var resp dto.AuthResponse
	if err := s.api.Post(ctx, constants.PathAuthRegister, req, &resp); err != nil {
		s.logger.Warn(ctx, "registration failed", logger.String("username", req.Username), logger.Err(err))
		return dto.Fail[*dto.AuthResponse](err, MsgRegistrationFailed)
	}
	if err := s.persist(ctx, &resp); err != nil {
		return dto.Fail[*dto.AuthResponse](err, MsgRegistrationFailed)
	}

	s.logger.Info(ctx, "registration succeeded", logger.String("username", resp.Username))
	return dto.Ok(&resp)
}

// persist writes token and profile in one atomic store call; success is not
// reported until it returns.
func (s *sessionManagerImpl) persist(ctx context.Context, resp *dto.AuthResponse) error {
	token, profile := resp.Split()
	if token == "" {
		return errors.New(errors.KindDecode, "response carried no token")
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return errors.ErrDecode(200, err)
	}
	return s.store.SetMany(ctx, map[string]string{
		constants.StorageKeyToken: token,
		constants.StorageKeyUser:  string(data),
	})
}

func (s *sessionManagerImpl) Logout(ctx context.Context) {
	if err := s.store.Remove(ctx, constants.SessionKeys...); err != nil {
		s.logger.Error(ctx, "failed to clear session", err)
	}
}

func (s *sessionManagerImpl) GetCurrentUser(ctx context.Context) *models.UserProfile {
	raw, ok, _ := s.store.Get(ctx, constants.StorageKeyUser)
	if !ok {
		return nil
	}
	if !s.IsAuthenticated(ctx) {
		s.logger.Warn(ctx, "profile persisted without a token, clearing it")
		s.Logout(ctx)
		return nil
	}

	var profile models.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.Warn(ctx, "persisted profile is corrupt, clearing session", logger.Err(err))
		s.Logout(ctx)
		return nil
	}
	return &profile
}

func (s *sessionManagerImpl) IsAuthenticated(ctx context.Context) bool {
	return s.GetToken(ctx) != ""
}

func (s *sessionManagerImpl) IsAdmin(ctx context.Context) bool {
	return s.GetCurrentUser(ctx).IsAdmin()
}

func (s *sessionManagerImpl) HealthCheck(ctx context.Context) dto.Result[*models.ServiceHealth] {
	var health models.ServiceHealth
	if err := s.api.Get(ctx, constants.PathAuthHealth, &health); err != nil {
		return dto.Fail[*models.ServiceHealth](err, MsgHealthCheckFailed)
	}
	return dto.Ok(&health)
}

func (s *sessionManagerImpl) GetToken(ctx context.Context) string {
	token, ok, _ := s.store.Get(ctx, constants.StorageKeyToken)
	if !ok {
		return ""
	}
	return token
}

func (s *sessionManagerImpl) TokenExpiry(ctx context.Context) (time.Time, bool) {
	token := s.GetToken(ctx)
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.logger.Debug(ctx, "token is not a parseable JWT", logger.Err(err))
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
