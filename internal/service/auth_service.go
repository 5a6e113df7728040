package service

import (
	"context"
	"strings"
	"time"

	"github.com/EdinMesanovic/postinfo/internal/dto"
	"github.com/EdinMesanovic/postinfo/internal/model"
	"github.com/EdinMesanovic/postinfo/internal/repository"
	"github.com/EdinMesanovic/postinfo/internal/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, includeDisabled bool) ([]dto.UserResponse, error)
	DisableUser(ctx context.Context, id uuid.UUID) error
	ReactivateUser(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo   repository.UserRepository
	tokens *token.Issuer
}

func NewAuthService(repo repository.UserRepository, tokens *token.Issuer) AuthService {
	return &authService{repo: repo, tokens: tokens}
}

// normalizeUsername applies the canonical form used at both registration and
// login so lookups by username are case-insensitive.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Login verifies credentials, establishes a fresh refresh session (nonce +
// expiry stored on the user record) and issues an access/refresh token pair.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, normalizeUsername(req.Username))
	if err != nil || user.Status != model.UserStatusActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	nonce := uuid.NewString()
	now := time.Now()
	if err := s.repo.SetRefreshSession(ctx, user.ID, nonce, now.Add(s.tokens.RefreshTTL()), now); err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccess(user.ID.String(), user.Role, user.Username)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefresh(user.ID.String(), nonce)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		OK:           true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			Name:     user.Name,
			Role:     user.Role,
			Status:   user.Status,
		},
	}, nil
}

// Refresh rotates the refresh session: the stored nonce is swapped for a new
// one in a single conditional update, so the presented refresh token becomes
// permanently unusable. A replayed token fails the nonce match and is
// rejected with the same error as every other failure mode.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	newNonce := uuid.NewString()
	rows, err := s.repo.RotateRefreshNonce(ctx, userID, claims.Nonce, newNonce, time.Now().Add(s.tokens.RefreshTTL()))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvalidRefresh
	}

	// Role and username are re-read here instead of trusted from the old
	// token, so a role change takes effect on the next refresh.
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	accessToken, err := s.tokens.IssueAccess(user.ID.String(), user.Role, user.Username)
	if err != nil {
		return nil, err
	}
	newRefreshToken, err := s.tokens.IssueRefresh(user.ID.String(), newNonce)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshResponse{
		OK:           true,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout clears the refresh session, invalidating any outstanding refresh
// token regardless of its embedded expiry.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearRefreshSession(ctx, userID)
}

func (s *authService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     normalizeUsername(req.Username),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       model.UserStatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return &dto.UserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
		Status:   user.Status,
	}, nil
}

func (s *authService) ListUsers(ctx context.Context, includeDisabled bool) ([]dto.UserResponse, error) {
	var users []model.User
	var err error
	if includeDisabled {
		users, err = s.repo.ListAll(ctx)
	} else {
		users, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, len(users))
	for i, u := range users {
		resp[i] = dto.UserResponse{
			ID:          u.ID.String(),
			Username:    u.Username,
			Name:        u.Name,
			Role:        u.Role,
			Status:      u.Status,
			LastLoginAt: u.LastLoginAt,
		}
	}
	return resp, nil
}

func (s *authService) DisableUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Disable(ctx, id)
}

func (s *authService) ReactivateUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivate(ctx, id)
}
