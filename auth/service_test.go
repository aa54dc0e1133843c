package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/authd-go/apperror"
	"github.com/user/authd-go/config"
	"github.com/user/authd-go/users"
)

// memStore is an in-memory users.Store for service tests. The mutex gives it
// the same atomicity guarantee the real store gets from the unique index:
// concurrent Create calls for one normalized email admit exactly one winner.
type memStore struct {
	mu      sync.Mutex
	byEmail map[string]*users.User
}

func newMemStore() *memStore {
	return &memStore{byEmail: make(map[string]*users.User)}
}

func (m *memStore) Create(ctx context.Context, email, passwordHash string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := users.NormalizeEmail(email)
	if _, exists := m.byEmail[key]; exists {
		return nil, users.ErrDuplicateEmail
	}

	now := time.Now()
	m.byEmail[key] = &users.User{
		ID:           uuid.NewString(),
		Email:        key,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	u := *m.byEmail[key]
	u.PasswordHash = ""
	return &u, nil
}

func (m *memStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, exists := m.byEmail[users.NormalizeEmail(email)]
	if !exists {
		return nil, users.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byEmail {
		if u.ID == id {
			copied := *u
			copied.PasswordHash = ""
			return &copied, nil
		}
	}
	return nil, users.ErrNotFound
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

// failStore simulates an unavailable backend: every operation errors.
type failStore struct{}

func (failStore) Create(context.Context, string, string) (*users.User, error) {
	return nil, errors.New("connection refused")
}
func (failStore) FindByEmail(context.Context, string) (*users.User, error) {
	return nil, errors.New("connection refused")
}
func (failStore) FindByID(context.Context, string) (*users.User, error) {
	return nil, errors.New("connection refused")
}

func newTestService(store users.Store) (*Service, *TokenIssuer) {
	tokens := NewTokenIssuer(&config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenDuration: 168 * time.Hour,
	})
	return NewService(store, NewBcryptHasher(bcrypt.MinCost), tokens), tokens
}

func wireCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperror.FromError(err)
	require.True(t, ok, "expected an *apperror.AppError, got %v", err)
	return appErr.Code
}

func TestRegister_IssuesVerifiableToken(t *testing.T) {
	t.Parallel()

	svc, tokens := newTestService(newMemStore())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	// The token's verified subject is the new user's id.
	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)

	_, err = uuid.Parse(resp.User.ID)
	assert.NoError(t, err, "ids are opaque but uuid-shaped in every store")
}

func TestRegister_NormalizesEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newMemStore())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Alice@Example.COM",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)
}

func TestRegister_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newMemStore())

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "A@X.com", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeEmailInUse, wireCode(t, err))
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc, _ := newTestService(store)

	for _, req := range []RegisterRequest{
		{Email: "", Password: "pw"},
		{Email: "a@x.com", Password: ""},
		{},
	} {
		_, err := svc.Register(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, apperror.CodeMissingFields, wireCode(t, err))
	}

	// Validation happens before any storage write.
	assert.Equal(t, 0, store.count())
}

func TestLogin_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, tokens := newTestService(newMemStore())

	reg, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "bob@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Bob@Example.com", // casing must not matter
		Password: "s3cret",
	})
	require.NoError(t, err)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.Subject)
}

func TestLogin_BadCredentialsAreIndistinguishable(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newMemStore())

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "carol@x.com", Password: "right"})
	require.NoError(t, err)

	// Wrong password for an existing user.
	_, errWrongPw := svc.Login(context.Background(), LoginRequest{Email: "carol@x.com", Password: "wrong"})
	require.Error(t, errWrongPw)

	// No such user at all.
	_, errNoUser := svc.Login(context.Background(), LoginRequest{Email: "nobody@x.com", Password: "right"})
	require.Error(t, errNoUser)

	// Same code, same status: a caller cannot tell which emails exist.
	assert.Equal(t, apperror.CodeInvalidCredentials, wireCode(t, errWrongPw))
	assert.Equal(t, apperror.CodeInvalidCredentials, wireCode(t, errNoUser))
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newMemStore())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com"})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeMissingFields, wireCode(t, err))
}

func TestMe_ReturnsUserWithoutHash(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newMemStore())

	reg, err := svc.Register(context.Background(), RegisterRequest{Email: "dave@x.com", Password: "pw"})
	require.NoError(t, err)

	me, err := svc.Me(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, me.User.ID)
	assert.Equal(t, "dave@x.com", me.User.Email)
	assert.False(t, me.User.CreatedAt.IsZero())
}

func TestMe_UserVanishedAfterIssuance(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newMemStore())

	_, err := svc.Me(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeNotFound, wireCode(t, err))
	assert.True(t, apperror.IsNotFound(err))
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newMemStore())

	const attempts = 8
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), RegisterRequest{
				Email:    "race@x.com",
				Password: "pw",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case wireCode(t, err) == apperror.CodeEmailInUse:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one registration may win")
	assert.Equal(t, attempts-1, conflicts, "every loser gets email_in_use")
}

func TestStoreFailuresMapToServerError(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(failStore{})

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@x.com", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeServerError, wireCode(t, err))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeServerError, wireCode(t, err))

	_, err = svc.Me(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeServerError, wireCode(t, err))
}
