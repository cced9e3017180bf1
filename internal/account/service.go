package account

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id, userID uuid.UUID) (*Account, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]*Account, error)
	UpdateAccount(ctx context.Context, a *Account) error
	DeleteAccount(ctx context.Context, id, userID uuid.UUID) error
	TransactionCount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	UserID         uuid.UUID
	Name           string
	Type           Type
	InitialBalance int64
	Color          string
	Icon           string
}

// Create opens an account with its cached balance seeded from the
// initial balance.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Account, error) {
	if !p.Type.Valid() {
		return nil, ErrInvalidType
	}

	a := &Account{
		UserID:         p.UserID,
		Name:           p.Name,
		Type:           p.Type,
		InitialBalance: p.InitialBalance,
		Balance:        p.InitialBalance,
		Color:          p.Color,
		Icon:           p.Icon,
	}

	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, id, userID)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Account, error) {
	return s.repo.ListAccounts(ctx, userID)
}

type UpdateParams struct {
	Name  *string
	Type  *Type
	Color *string
	Icon  *string
}

// Update changes display metadata only. Balances never move here;
// that is the engine's job.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, p UpdateParams) (*Account, error) {
	a, err := s.repo.GetAccount(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		a.Name = *p.Name
	}

	if p.Type != nil {
		if !p.Type.Valid() {
			return nil, ErrInvalidType
		}

		a.Type = *p.Type
	}

	if p.Color != nil {
		a.Color = *p.Color
	}

	if p.Icon != nil {
		a.Icon = *p.Icon
	}

	if err := s.repo.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// Delete removes an account only when no transaction references it,
// otherwise it fails with ErrInUse. Cascading or reassigning history
// would silently break the balance invariant of the remaining data.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.repo.GetAccount(ctx, id, userID); err != nil {
		return err
	}

	n, err := s.repo.TransactionCount(ctx, id)
	if err != nil {
		return err
	}

	if n > 0 {
		return ErrInUse
	}

	return s.repo.DeleteAccount(ctx, id, userID)
}
