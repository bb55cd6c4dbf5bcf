package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/clubescore/ranking-api/internal/domain"
	"github.com/clubescore/ranking-api/internal/repository"
)

var (
	ErrAdminEmailExists = repository.ErrAdminEmailExists
	ErrAdminNotFound    = repository.ErrAdminNotFound
	ErrWrongPassword    = errors.New("wrong password")
)

type AuthAdminRepository interface {
	Create(ctx context.Context, admin domain.Admin) (domain.Admin, error)
	FindByEmail(ctx context.Context, email string) (domain.Admin, error)
}

type AuthService struct {
	repo AuthAdminRepository
}

func NewAuthService(repo AuthAdminRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

func (s *AuthService) Signup(ctx context.Context, admin domain.Admin) (domain.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Admin{}, err
	}
	admin.Password = string(hash)

	created, err := s.repo.Create(ctx, admin)
	if err != nil {
		if errors.Is(err, repository.ErrAdminEmailExists) {
			return domain.Admin{}, ErrAdminEmailExists
		}

		return domain.Admin{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Admin, error) {
	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return domain.Admin{}, ErrAdminNotFound
		}

		return domain.Admin{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return domain.Admin{}, ErrWrongPassword
	}

	return admin, nil
}
