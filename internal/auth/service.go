package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rfmendes/contas/internal/account"
	"github.com/rfmendes/contas/internal/category"
)

type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
}

// Mailer delivers the verification email. Delivery is fire-and-forget
// from the service's point of view.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, token string) error
}

type AccountCreator interface {
	Create(ctx context.Context, p account.CreateParams) (*account.Account, error)
}

type CategoryCreator interface {
	Create(ctx context.Context, userID uuid.UUID, name string) (*category.Category, error)
}

// defaultCategories seed a fresh user; "Transfer" is absent on purpose,
// the ledger creates it lazily on first transfer.
var defaultCategories = []string{"Food", "Transport", "Housing", "Leisure", "Salary", "Other"}

type Service struct {
	repo       Repository
	tokens     *Tokens
	mailer     Mailer
	accounts   AccountCreator
	categories CategoryCreator
}

func NewService(repo Repository, tokens *Tokens, mailer Mailer, accounts AccountCreator, categories CategoryCreator) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		mailer:     mailer,
		accounts:   accounts,
		categories: categories,
	}
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// Register creates an unverified user with a default account and
// category set, then sends the verification email in the background.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*User, error) {
	if _, err := s.repo.GetUserByEmail(ctx, p.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: string(hash),
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	if _, err := s.accounts.Create(ctx, account.CreateParams{
		UserID: u.ID,
		Name:   "Cash",
		Type:   account.TypeCash,
	}); err != nil {
		return nil, fmt.Errorf("creating default account: %w", err)
	}

	for _, name := range defaultCategories {
		if _, err := s.categories.Create(ctx, u.ID, name); err != nil {
			return nil, fmt.Errorf("creating default category %q: %w", name, err)
		}
	}

	token, err := s.tokens.Verification(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing verification token: %w", err)
	}

	go func() {
		if err := s.mailer.SendVerification(context.Background(), u.Email, u.Name, token); err != nil {
			slog.Error("sending verification email", "user_id", u.ID, "error", err)
		}
	}()

	return u, nil
}

// Verify validates a verification token and marks the user verified.
func (s *Service) Verify(ctx context.Context, token string) error {
	userID, err := s.tokens.ParseVerification(token)
	if err != nil {
		return err
	}

	return s.repo.MarkVerified(ctx, userID)
}

type LoginResult struct {
	Token string
	ID    uuid.UUID
	Name  string
	Email string
}

// Login checks credentials and verification state and issues a bearer
// token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !u.Verified {
		return nil, ErrNotVerified
	}

	token, err := s.tokens.Access(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	return &LoginResult{Token: token, ID: u.ID, Name: u.Name, Email: u.Email}, nil
}
