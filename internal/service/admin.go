package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubescore/ranking-api/internal/domain"
	"github.com/clubescore/ranking-api/internal/repository"
)

type AdminRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Admin, error)
}

type AdminService struct {
	repo AdminRepository
}

func NewAdminService(repo AdminRepository) *AdminService {
	return &AdminService{
		repo: repo,
	}
}

func (s *AdminService) GetAdmin(ctx context.Context, id uint) (domain.Admin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return domain.Admin{}, ErrAdminNotFound
		}

		return domain.Admin{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return admin, nil
}
