// Package businessflow contains the core business logic and use cases for the lead dashboard
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"leadboard/app/dto"
	"leadboard/app/services"
	"leadboard/models"
	"leadboard/repository"
	"leadboard/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow handles account creation and session lifecycle operations
type AuthFlow interface {
	Signup(ctx context.Context, request *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Logout(ctx context.Context, request *dto.LogoutRequest, metadata *ClientMetadata) (*dto.LogoutResponse, error)
}

// AuthFlowImpl implements the authentication business flow
type AuthFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewAuthFlow creates a new authentication flow instance
func NewAuthFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Signup registers a new email/password account and opens its first session
func (af *AuthFlowImpl) Signup(ctx context.Context, request *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	var user *models.User

	resp, err := af.WithSignupTransaction(ctx, func(ctx context.Context) (*dto.SignupResponse, error) {
		email := strings.ToLower(strings.TrimSpace(request.Email))

		existing, err := af.userRepo.ByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailAlreadyExists
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		user = &models.User{
			UUID:            uuid.New(),
			Name:            strings.TrimSpace(request.Name),
			Email:           email,
			PasswordHash:    utils.ToPtr(string(hashedPassword)),
			IsEmailVerified: utils.ToPtr(false),
			IsActive:        utils.ToPtr(true),
			CreatedAt:       utils.UTCNow(),
			UpdatedAt:       utils.UTCNow(),
		}

		if err := af.userRepo.Save(ctx, user); err != nil {
			return nil, err
		}

		session, err := af.CreateSession(ctx, user.ID, metadata)
		if err != nil {
			return nil, err
		}

		return &dto.SignupResponse{
			Message: "Account created successfully",
			User:    ToAuthUserDTO(*user),
			Session: ToSessionInfoDTO(*session),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Signup failed: %s", err.Error())
		_ = af.LogAuthAttempt(ctx, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	}

	msg := fmt.Sprintf("Account created successfully: %d", resp.User.ID)
	_ = af.LogAuthAttempt(ctx, user, models.AuditActionSignupCompleted, msg, true, nil, metadata)

	return resp, nil
}

// Login authenticates a user with email and password
func (af *AuthFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var user *models.User

	resp, err := af.WithLoginTransaction(ctx, func(ctx context.Context) (*dto.LoginResponse, error) {
		var err error
		user, err = af.userRepo.ByEmail(ctx, strings.ToLower(strings.TrimSpace(request.Email)))
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		if !utils.IsTrue(user.IsActive) {
			return nil, ErrAccountInactive
		}

		if !user.HasPassword() {
			return nil, ErrPasswordLoginOnly
		}

		if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(request.Password)); err != nil {
			return nil, ErrIncorrectPassword
		}

		session, err := af.CreateSession(ctx, user.ID, metadata)
		if err != nil {
			return nil, err
		}

		if err := af.userRepo.UpdateLastLogin(ctx, user.ID, utils.UTCNow()); err != nil {
			return nil, err
		}

		return &dto.LoginResponse{
			User:    ToAuthUserDTO(*user),
			Session: ToSessionInfoDTO(*session),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = af.LogAuthAttempt(ctx, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	msg := fmt.Sprintf("User logged in successfully: %d", resp.User.ID)
	_ = af.LogAuthAttempt(ctx, user, models.AuditActionLoginSuccess, msg, true, nil, metadata)

	return resp, nil
}

// Logout revokes every active session of the user along with its tokens
func (af *AuthFlowImpl) Logout(ctx context.Context, request *dto.LogoutRequest, metadata *ClientMetadata) (*dto.LogoutResponse, error) {
	var user *models.User

	resp, err := af.WithLogoutTransaction(ctx, func(ctx context.Context) (*dto.LogoutResponse, error) {
		var err error
		user, err = af.userRepo.ByID(ctx, request.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		sessions, err := af.sessionRepo.ListActiveSessionsByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}

		for _, session := range sessions {
			_ = af.tokenService.RevokeToken(session.SessionToken)
			if session.RefreshToken != nil {
				_ = af.tokenService.RevokeToken(*session.RefreshToken)
			}
		}

		if err := af.sessionRepo.RevokeAllUserSessions(ctx, user.ID); err != nil {
			return nil, err
		}

		return &dto.LogoutResponse{
			Message: "Logged out successfully",
		}, nil
	})

	if err != nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	msg := fmt.Sprintf("User logged out: %d", request.UserID)
	_ = af.LogAuthAttempt(ctx, user, models.AuditActionLogout, msg, true, nil, metadata)

	return resp, nil
}

// CreateSession issues a token pair and persists the session record
func (af *AuthFlowImpl) CreateSession(ctx context.Context, userID uint, metadata *ClientMetadata) (*models.UserSession, error) {
	accessToken, refreshToken, err := af.tokenService.GenerateTokens(userID)
	if err != nil {
		return nil, err
	}

	expiresAt := utils.UTCNowAdd(utils.SessionTimeout)

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.UserSession{
		UserID:         userID,
		CorrelationID:  uuid.New(),
		SessionToken:   accessToken,
		RefreshToken:   &refreshToken,
		ExpiresAt:      expiresAt,
		IsActive:       utils.ToPtr(true),
		IPAddress:      &ipAddress,
		UserAgent:      &userAgent,
		CreatedAt:      utils.UTCNow(),
		LastAccessedAt: utils.UTCNow(),
	}

	err = af.sessionRepo.Save(ctx, session)
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (af *AuthFlowImpl) LogAuthAttempt(ctx context.Context, user *models.User, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var userID *uint
	if user != nil {
		userID = &user.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return af.auditRepo.Save(ctx, audit)
}

func (af *AuthFlowImpl) WithSignupTransaction(ctx context.Context, fn func(context.Context) (*dto.SignupResponse, error)) (*dto.SignupResponse, error) {
	var result *dto.SignupResponse
	var fnErr error

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (af *AuthFlowImpl) WithLoginTransaction(ctx context.Context, fn func(context.Context) (*dto.LoginResponse, error)) (*dto.LoginResponse, error) {
	var result *dto.LoginResponse
	var fnErr error

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (af *AuthFlowImpl) WithLogoutTransaction(ctx context.Context, fn func(context.Context) (*dto.LogoutResponse, error)) (*dto.LogoutResponse, error) {
	var result *dto.LogoutResponse
	var fnErr error

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
