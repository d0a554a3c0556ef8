package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/domain/identity"
	"github.com/lexflow/backend/internal/domain/shared"
	"github.com/lexflow/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Authentication errors
var (
	ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthenticated, "Incorrect email or password")
	ErrEmailTaken         = shared.NewDomainError(shared.CodeAlreadyExists, "Email already registered")
	ErrInvalidToken       = shared.NewDomainError(shared.CodeUnauthenticated, "Could not validate credentials")
	ErrTokenExpired       = shared.NewDomainError(shared.CodeUnauthenticated, "Token has expired")
	ErrInactiveUser       = shared.NewDomainError(shared.CodeInactive, "Inactive user")
)

// AuthService handles registration, login and token validation
type AuthService struct {
	userRepo   identity.UserRepository
	registrar  identity.Registrar
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo identity.UserRepository,
	registrar identity.Registrar,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		registrar:  registrar,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a firm and its super-user in one transaction and logs the
// new user in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	firm, err := identity.NewFirm(req.FirmName, req.Email)
	if err != nil {
		return nil, err
	}
	owner, err := identity.NewFirmOwner(firm.ID, req.Email, req.FullName, req.Password)
	if err != nil {
		return nil, err
	}

	if err := s.registrar.Register(ctx, firm, owner); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("Failed to register firm",
			zap.String("email", owner.Email),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Firm registered",
		zap.String("firm_id", firm.ID.String()),
		zap.String("user_id", owner.ID.String()))

	return s.issue(owner)
}

// Login authenticates with email and password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("Login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Info("Login failed: wrong password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("Login rejected for inactive user", zap.String("user_id", user.ID.String()))
		return nil, ErrInactiveUser
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// A lost last_login_at stamp does not block the login
		s.logger.Warn("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair, re-reading the user so a
// deactivated account cannot keep refreshing
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, tokenError(err)
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, principalOf(user))
	if err != nil {
		return nil, tokenError(err)
	}
	return toAuthResponse(pair, s.jwtService.AccessTokenExpiration(), nil), nil
}

// Authenticate resolves a bearer access token into the calling principal.
// Unknown or mismatched users are reported as invalid credentials.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, tokenError(err)
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrInvalidToken
	}
	firmID, err := claims.FirmUUID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.FirmID != firmID {
		return nil, ErrInvalidToken
	}

	return &Principal{
		UserID:      user.ID,
		FirmID:      user.FirmID,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
		IsActive:    user.IsActive,
	}, nil
}

// CurrentUser returns the profile of the calling user
func (s *AuthService) CurrentUser(ctx context.Context, p Principal) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if user.FirmID != p.FirmID {
		return nil, shared.ErrNotFound
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *AuthService) activeUser(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(principalOf(user))
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}
	return toAuthResponse(pair, s.jwtService.AccessTokenExpiration(), user), nil
}

func tokenError(err error) error {
	if errors.Is(err, auth.ErrExpiredToken) {
		return ErrTokenExpired
	}
	return ErrInvalidToken
}
