package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/fork-backend/internal/goals"
	"github.com/angelmondragon/fork-backend/internal/ledger"
	"github.com/angelmondragon/fork-backend/internal/users"
	"github.com/angelmondragon/fork-backend/internal/weighthistory"
	pkgAuth "github.com/angelmondragon/fork-backend/pkg/auth"
	"github.com/angelmondragon/fork-backend/pkg/auth/session"
	"github.com/angelmondragon/fork-backend/pkg/config"
	"github.com/angelmondragon/fork-backend/pkg/db"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/angelmondragon/fork-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	tokenTypeBearer           = "Bearer"
	defaultHeight             = 180
	defaultAge                = 18
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type sessionManager interface {
	Start(ctx context.Context, userID uuid.UUID) (*session.Session, error)
	Rotate(ctx context.Context, refreshToken string) (*session.Session, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Users          users.Repository
	Goals          goals.Repository
	Weights        weighthistory.Repository
	Tx             db.TxRunner
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	users       users.Repository
	goals       goals.Repository
	weights     weighthistory.Repository
	tx          db.TxRunner
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Users == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repository is required")
	case params.Goals == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goal repository is required")
	case params.Weights == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight history repository is required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	case params.SessionManager == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:       params.Users,
		goals:       params.Goals,
		weights:     params.Weights,
		tx:          params.Tx,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
		now:         now,
	}, nil
}

// Register creates the user, their first goal snapshot and optional first
// weight point in one transaction, then signs them in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := s.now().UTC()
	user := &models.User{
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  passwordHash,
		Height:        defaultHeight,
		Age:           defaultAge,
		Gender:        req.Gender,
		ActivityLevel: req.ActivityLevel,
	}
	if req.Height != nil {
		user.Height = *req.Height
	}
	if req.Age != nil {
		user.Age = *req.Age
	}
	targets := goals.DefaultTargets()
	if req.Goals != nil {
		targets = *req.Goals
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		if err := ensureUnique(ctx, userRepo, req.Email, req.Username); err != nil {
			return err
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		snapshot := targets.Snapshot(user.ID, now)
		if err := s.goals.WithTx(tx).Create(ctx, snapshot); err != nil {
			return err
		}
		if req.Weight != nil {
			entry := &models.WeightHistoryEntry{UserID: user.ID, Weight: *req.Weight, CreatedAt: ledger.Day(now)}
			if err := s.weights.WithTx(tx).Create(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return nil, err
		}
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "username", req.Username), "registration failed", err)
		}
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user registered")
	}
	return s.issue(ctx, user, now)
}

func ensureUnique(ctx context.Context, repo users.Repository, email, username string) error {
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return err
	}
	if _, err := repo.FindByUsername(ctx, username); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	} else if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return err
	}
	return nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return s.issue(ctx, user, now)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	sess, err := s.session.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, sessionError(err)
	}
	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, err
	}
	return s.mint(user, sess, s.now().UTC())
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	return sessionError(s.session.Revoke(ctx, refreshToken))
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, err
	}
	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) issue(ctx context.Context, user *models.User, now time.Time) (*TokenResponse, error) {
	sess, err := s.session.Start(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return s.mint(user, sess, now)
}

func (s *service) mint(user *models.User, sess *session.Session, now time.Time) (*TokenResponse, error) {
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		JTI:      sess.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    tokenTypeBearer,
		User:         users.FromModel(user),
	}, nil
}

func sessionError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, session.ErrInvalidRefreshToken) {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh session store")
}
