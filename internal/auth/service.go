package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/projecthub/internal"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	logger         *slog.Logger
	rbac           *RBACAuthorization
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
		rbac:           NewRBACAuthorization(logger),
	}
}

func (s *Service) RBACAuthorization() *RBACAuthorization {
	return s.rbac
}

func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentials(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// same answer as a wrong password
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		return AuthTokens{}, internal.NewInternalError("failed to load credentials", err)
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed: wrong password", "user_id", creds.UserID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !creds.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	user, err := s.repo.GetUserWithPermissions(ctx, creds.UserID)
	if err != nil {
		return AuthTokens{}, err
	}

	s.logger.Info("user authenticated", "user_id", user.ID)
	return s.issue(user)
}

func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := UserIDFromClaims(claims)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.repo.GetUserWithPermissions(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthTokens{}, internal.ErrInvalidToken
		}
		return AuthTokens{}, err
	}

	return s.issue(user)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

func (s *Service) GetUserWithPermissions(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserWithPermissions(ctx, userID)
}

func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) issue(user *User) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(user)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue access token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(user)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenGenerator.AccessTTLSeconds(),
	}, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
