package member

import (
	"context"
	"errors"

	"courtclub/internal/auth"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("member is not active")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Member, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*Member, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *Member, error)
	GetByID(ctx context.Context, memberID int) (*Member, error)
	ChangePassword(ctx context.Context, memberID int, current, next string) error
	Deactivate(ctx context.Context, memberID int) error
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Member, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	m, err := s.repo.Create(ctx, req.Email, req.FullName, passwordHash, "member")
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(m.ID, m.Email, m.Role, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return m, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Member, string, string, error) {
	m, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(m.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	if !m.IsActive {
		return nil, "", "", ErrInactive
	}

	accessToken, refreshToken, err := auth.GenerateTokens(m.ID, m.Email, m.Role, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return m, accessToken, refreshToken, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *Member, error) {
	newAccessToken, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	m, err := s.repo.FindByID(ctx, claims.MemberID)
	if err != nil {
		return "", nil, ErrNotFound
	}
	if !m.IsActive {
		return "", nil, ErrInactive
	}

	return newAccessToken, m, nil
}

func (s *service) GetByID(ctx context.Context, memberID int) (*Member, error) {
	return s.repo.FindByID(ctx, memberID)
}

func (s *service) ChangePassword(ctx context.Context, memberID int, current, next string) error {
	m, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(m.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	passwordHash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(ctx, memberID, passwordHash)
}

func (s *service) Deactivate(ctx context.Context, memberID int) error {
	return s.repo.Deactivate(ctx, memberID)
}
