package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	Store           *Store
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func NewService(store *Store, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{Store: store, JWTSecret: jwtSecret, AccessTokenTTL: accessTTL, RefreshTokenTTL: refreshTTL}
}

type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
	FullName     string `json:"fullName"`
	Role         string `json:"role"`
	DivisionID   string `json:"divisionId,omitempty"`
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.Store.FindUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !user.Active {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	access, err := GenerateToken(s.JWTSecret, Claims{UserID: user.ID, Role: user.Role, DivisionID: user.DivisionID}, s.AccessTokenTTL)
	if err != nil {
		return LoginResult{}, err
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.CreateSession(ctx, user.ID, hashToken(refresh), time.Now().Add(s.RefreshTokenTTL)); err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
		FullName:     user.FullName,
		Role:         user.Role,
		DivisionID:   user.DivisionID,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, userID, refreshToken string) (LoginResult, error) {
	valid, err := s.Store.SessionValid(ctx, userID, hashToken(refreshToken))
	if err != nil {
		return LoginResult{}, err
	}
	if !valid {
		return LoginResult{}, ErrInvalidCredentials
	}

	userCtx, active, err := s.Store.UserContextByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !active) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	access, err := GenerateToken(s.JWTSecret, Claims{UserID: userCtx.UserID, Role: userCtx.Role, DivisionID: userCtx.DivisionID}, s.AccessTokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	next, err := newRefreshToken()
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.RotateSession(ctx, userID, hashToken(refreshToken), hashToken(next), time.Now().Add(s.RefreshTokenTTL)); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  access,
		RefreshToken: next,
		UserID:       userCtx.UserID,
		Role:         userCtx.Role,
		DivisionID:   userCtx.DivisionID,
	}, nil
}

func (s *Service) Logout(ctx context.Context, userID, refreshToken string) error {
	return s.Store.RevokeSession(ctx, userID, hashToken(refreshToken))
}

// HasPermission satisfies the transport middleware's PermissionStore.
func (s *Service) HasPermission(ctx context.Context, role, permission string) (bool, error) {
	return RoleHasPermission(role, permission), nil
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
