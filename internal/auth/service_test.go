package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rfmendes/contas/internal/account"
	"github.com/rfmendes/contas/internal/category"
)

type fakeRepo struct {
	byEmail  map[string]*User
	byID     map[uuid.UUID]*User
	verified map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byEmail:  make(map[string]*User),
		byID:     make(map[uuid.UUID]*User),
		verified: make(map[uuid.UUID]bool),
	}
}

func (f *fakeRepo) CreateUser(ctx context.Context, u *User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}

	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u

	return nil
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *u
	cp.Verified = f.verified[u.ID]

	return &cp, nil
}

func (f *fakeRepo) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *u
	cp.Verified = f.verified[u.ID]

	return &cp, nil
}

func (f *fakeRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return ErrNotFound
	}

	f.verified[id] = true

	return nil
}

// fakeMailer reports every send on a channel so tests can wait for the
// background delivery goroutine.
type fakeMailer struct {
	sent chan string
}

func (f *fakeMailer) SendVerification(ctx context.Context, to, name, token string) error {
	f.sent <- to
	return nil
}

type fakeAccounts struct {
	created []account.CreateParams
}

func (f *fakeAccounts) Create(ctx context.Context, p account.CreateParams) (*account.Account, error) {
	f.created = append(f.created, p)
	return &account.Account{ID: uuid.New(), UserID: p.UserID, Name: p.Name, Type: p.Type}, nil
}

type fakeCategories struct {
	created []string
}

func (f *fakeCategories) Create(ctx context.Context, userID uuid.UUID, name string) (*category.Category, error) {
	f.created = append(f.created, name)
	return &category.Category{ID: uuid.New(), UserID: userID, Name: name}, nil
}

func newTestService(repo *fakeRepo, mailer *fakeMailer) (*Service, *fakeAccounts, *fakeCategories) {
	accounts := &fakeAccounts{}
	categories := &fakeCategories{}
	tokens := NewTokens("test-secret", time.Hour, time.Hour)

	return NewService(repo, tokens, mailer, accounts, categories), accounts, categories
}

func TestService_Register(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{sent: make(chan string, 1)}
	svc, accounts, categories := newTestService(repo, mailer)

	u, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Rita",
		Email:    "rita@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	// Password is stored hashed, never in the clear.
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))

	require.Len(t, accounts.created, 1)
	assert.Equal(t, "Cash", accounts.created[0].Name)
	assert.Equal(t, account.TypeCash, accounts.created[0].Type)
	assert.Equal(t, u.ID, accounts.created[0].UserID)

	assert.Equal(t, defaultCategories, categories.created)

	select {
	case to := <-mailer.sent:
		assert.Equal(t, "rita@example.com", to)
	case <-time.After(time.Second):
		t.Fatal("verification email was never sent")
	}
}

func TestService_Register_EmailTaken(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{sent: make(chan string, 2)}
	svc, _, _ := newTestService(repo, mailer)

	params := RegisterParams{Name: "Rita", Email: "rita@example.com", Password: "s3cret"}

	_, err := svc.Register(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), params)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_Verify(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{sent: make(chan string, 1)}
	svc, _, _ := newTestService(repo, mailer)

	u, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Rita",
		Email:    "rita@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	token, err := svc.tokens.Verification(u.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Verify(context.Background(), token))
	assert.True(t, repo.verified[u.ID])
}

func TestService_Verify_InvalidToken(t *testing.T) {
	svc, _, _ := newTestService(newFakeRepo(), &fakeMailer{sent: make(chan string, 1)})

	err := svc.Verify(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Login(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{sent: make(chan string, 1)}
	svc, _, _ := newTestService(repo, mailer)

	u, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Rita",
		Email:    "rita@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	t.Run("unverified", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "rita@example.com", "s3cret")
		assert.ErrorIs(t, err, ErrNotVerified)
	})

	repo.verified[u.ID] = true

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "rita@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		result, err := svc.Login(context.Background(), "rita@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, u.ID, result.ID)
		assert.Equal(t, "Rita", result.Name)
		assert.Equal(t, "rita@example.com", result.Email)

		got, err := svc.tokens.ParseAccess(result.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got)
	})
}
