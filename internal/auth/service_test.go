package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ideaforge/ideaforge/internal/auth"
)

const testBcryptCost = 4 // low cost for fast tests

func setupService(t *testing.T) (*auth.Service, *auth.MemoryRepository) {
	t.Helper()

	repo := auth.NewMemoryRepository()
	svc := auth.NewService(repo, auth.NewPasswordVerifier(repo), testBcryptCost)
	return svc, repo
}

func strPtr(s string) *string { return &s }

// --- Register Tests ---

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	t.Parallel()
	svc, _ := setupService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, auth.RegisterInput{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.True(t, alice.IsAdmin)

	bob, err := svc.Register(ctx, auth.RegisterInput{Email: "bob@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.False(t, bob.IsAdmin)
}

func TestRegister_HashesPassword(t *testing.T) {
	t.Parallel()
	svc, repo := setupService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, auth.RegisterInput{
		Email:     "alice@example.com",
		Password:  "correct horse",
		FirstName: strPtr("Alice"),
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordHash)
	assert.NotEqual(t, "correct horse", *stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("correct horse")))
	assert.Equal(t, "Alice", *stored.FirstName)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, repo := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{Email: "alice@example.com", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, auth.RegisterInput{Email: "alice@example.com", Password: "other"})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)

	count, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "no new record should be created")
}

// barrierRepo holds every CountAll caller until n of them have arrived.
type barrierRepo struct {
	*auth.MemoryRepository
	wg *sync.WaitGroup
}

func (r *barrierRepo) CountAll(ctx context.Context) (int, error) {
	n, err := r.MemoryRepository.CountAll(ctx)
	r.wg.Done()
	r.wg.Wait()
	return n, err
}

func TestRegister_ConcurrentBootstrapIsUnguarded(t *testing.T) {
	t.Parallel()

	wg := &sync.WaitGroup{}
	wg.Add(2)
	repo := &barrierRepo{MemoryRepository: auth.NewMemoryRepository(), wg: wg}
	svc := auth.NewService(repo, auth.NewPasswordVerifier(repo), testBcryptCost)

	results := make([]*auth.User, 2)
	errs := make([]error, 2)
	var done sync.WaitGroup
	for i, email := range []string{"a@example.com", "b@example.com"} {
		done.Add(1)
		go func() {
			defer done.Done()
			results[i], errs[i] = svc.Register(context.Background(), auth.RegisterInput{Email: email, Password: "pw123456"})
		}()
	}
	done.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	// Both saw an empty table, so both were promoted.
	assert.True(t, results[0].IsAdmin)
	assert.True(t, results[1].IsAdmin)
}

type failingRepo struct {
	*auth.MemoryRepository
}

func (failingRepo) CountAll(context.Context) (int, error) {
	return 0, errors.New("connection reset")
}

func TestRegister_CountFailure(t *testing.T) {
	t.Parallel()
	repo := failingRepo{auth.NewMemoryRepository()}
	svc := auth.NewService(repo, auth.NewPasswordVerifier(repo), testBcryptCost)

	_, err := svc.Register(context.Background(), auth.RegisterInput{Email: "a@example.com", Password: "pw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counting users")
}

// --- Login Tests ---

func TestLogin(t *testing.T) {
	t.Parallel()
	svc, _ := setupService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, auth.RegisterInput{Email: "bob@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		creds   auth.Credentials
		wantErr error
	}{
		{"valid", auth.Credentials{Email: "bob@example.com", Password: "s3cret-pass"}, nil},
		{"wrong password", auth.Credentials{Email: "bob@example.com", Password: "nope"}, auth.ErrInvalidCredentials},
		{"unknown email", auth.Credentials{Email: "carol@example.com", Password: "s3cret-pass"}, auth.ErrInvalidCredentials},
		{"empty password", auth.Credentials{Email: "bob@example.com"}, auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Login(ctx, tt.creds)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, u.ID)
		})
	}
}

func TestLogin_PasswordlessAccountRejected(t *testing.T) {
	t.Parallel()
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, auth.CreateUserInput{Email: "ext@example.com"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, auth.Credentials{Email: "ext@example.com", Password: ""})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestPasswordVerifier_Name(t *testing.T) {
	t.Parallel()
	v := auth.NewPasswordVerifier(auth.NewMemoryRepository())
	assert.Equal(t, "local", v.Name())
}

// --- CreateUser Tests ---

func TestCreateUser_UpsertKeepsPassword(t *testing.T) {
	t.Parallel()
	svc, _ := setupService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, auth.RegisterInput{Email: "dave@example.com", Password: "pw123456"})
	require.NoError(t, err)

	updated, err := svc.CreateUser(ctx, auth.CreateUserInput{
		ID:        &u.ID,
		Email:     "dave@example.com",
		FirstName: strPtr("Dave"),
		IsAdmin:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, u.ID, updated.ID)
	assert.True(t, updated.IsAdmin)
	assert.Equal(t, u.CreatedAt, updated.CreatedAt)

	_, err = svc.Login(ctx, auth.Credentials{Email: "dave@example.com", Password: "pw123456"})
	assert.NoError(t, err)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, auth.CreateUserInput{Email: "erin@example.com"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, auth.CreateUserInput{Email: "erin@example.com"})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

// --- Identity Tests ---

func TestIdentity(t *testing.T) {
	t.Parallel()
	svc, _ := setupService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, auth.RegisterInput{Email: "frank@example.com", Password: "pw123456"})
	require.NoError(t, err)

	id, err := svc.Identity(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "frank@example.com", id.Email)
	assert.True(t, id.IsAdmin)

	_, err = svc.Identity(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
