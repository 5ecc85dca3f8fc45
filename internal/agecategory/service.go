// AngelaMos | 2026
// service.go

package agecategory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/carterperez-dev/membership/internal/config"
)

const (
	minAge = 1
	maxAge = 130
)

var ErrInvalidAge = errors.New("age out of range")

type Service struct {
	repo Repository
	cfg  config.AgeCategoryConfig
}

func NewService(repo Repository, cfg config.AgeCategoryConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Increment(ctx context.Context, age int) (*Category, error) {
	if age < minAge || age > maxAge {
		return nil, ErrInvalidAge
	}

	category, err := s.repo.Increment(ctx, age, s.cfg.DefaultCap)
	if err != nil {
		return nil, err
	}

	if category.Unlocked && category.Count == category.Cap {
		slog.InfoContext(ctx, "age category unlocked",
			"age", category.Age,
			"cap", category.Cap,
		)
	}

	return category, nil
}
