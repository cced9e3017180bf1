package category

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id, userID uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*Category, error)
	RenameCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id, userID uuid.UUID) error
	TransactionCount(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string) (*Category, error) {
	c := &Category{UserID: userID, Name: name}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Category, error) {
	return s.repo.ListCategories(ctx, userID)
}

func (s *Service) Rename(ctx context.Context, userID, id uuid.UUID, name string) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	c.Name = name
	if err := s.repo.RenameCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Delete removes a category only while nothing references it; the
// alternative would orphan transactions out of their reporting bucket.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.repo.GetCategory(ctx, id, userID); err != nil {
		return err
	}

	n, err := s.repo.TransactionCount(ctx, id)
	if err != nil {
		return err
	}

	if n > 0 {
		return ErrInUse
	}

	return s.repo.DeleteCategory(ctx, id, userID)
}
