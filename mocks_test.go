package userauth

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive for the
	// whole test.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.NewCreateTable().
		Model((*User)(nil)).
		Exec(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}

var (
	testHashOnce sync.Once
	testHash     string
)

// testPassword is the cleartext behind testPasswordHash.
const testPassword = "Sup3rSecret"

// testPasswordHash returns one shared bcrypt hash so each test does not pay
// the hashing cost again.
func testPasswordHash(t *testing.T) string {
	t.Helper()

	testHashOnce.Do(func() {
		hash, err := HashPassword(testPassword)
		if err != nil {
			panic(err)
		}
		testHash = hash
	})

	return testHash
}

func seedUser(t *testing.T, repo RepositoryManager, opts ...func(*User)) *User {
	t.Helper()

	user := &User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: testPasswordHash(t),
	}

	for _, opt := range opts {
		opt(user)
	}

	created, err := repo.Users().Create(context.Background(), user)
	require.NoError(t, err)

	return created
}

func confirmed() func(*User) {
	return func(u *User) { u.IsConfirmed = true }
}

func withEmail(email string) func(*User) {
	return func(u *User) { u.Email = email }
}

func createdAt(ts time.Time) func(*User) {
	return func(u *User) { u.CreatedAt = &ts }
}

// stubResolver serves principals from a fixed map.
type stubResolver struct {
	users map[string]*User
	err   error
}

func (s *stubResolver) ResolveByID(ctx context.Context, id string) (*User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"id": id})
}

// failingRevoker simulates an unreachable revocation store.
type failingRevoker struct{}

func (failingRevoker) IsBlocked(ctx context.Context, token string) (bool, error) {
	return false, errors.New("store down", errors.CategoryInternal).
		WithTextCode(TextCodeStoreUnavailable)
}

func (failingRevoker) Block(ctx context.Context, token string, expiresAt time.Time) error {
	return errors.New("store down", errors.CategoryInternal).
		WithTextCode(TextCodeStoreUnavailable)
}

func (failingRevoker) BlockOnce(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	return false, errors.New("store down", errors.CategoryInternal).
		WithTextCode(TextCodeStoreUnavailable)
}

// recordingRevoker wraps a real store and records the order of calls.
type recordingRevoker struct {
	inner TokenRevoker
	calls []string
}

func (r *recordingRevoker) IsBlocked(ctx context.Context, token string) (bool, error) {
	r.calls = append(r.calls, "IsBlocked")
	return r.inner.IsBlocked(ctx, token)
}

func (r *recordingRevoker) Block(ctx context.Context, token string, expiresAt time.Time) error {
	r.calls = append(r.calls, "Block")
	return r.inner.Block(ctx, token, expiresAt)
}

func (r *recordingRevoker) BlockOnce(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	r.calls = append(r.calls, "BlockOnce")
	return r.inner.BlockOnce(ctx, token, expiresAt)
}

// capturingNotifier records deliveries and signals each one on a channel so
// tests can wait for the async send.
type capturingNotifier struct {
	mu       sync.Mutex
	sent     []capturedDelivery
	received chan struct{}
}

type capturedDelivery struct {
	Recipient string
	Token     string
	Template  string
}

func newCapturingNotifier() *capturingNotifier {
	return &capturingNotifier{received: make(chan struct{}, 8)}
}

func (n *capturingNotifier) Send(ctx context.Context, recipient, token, template string) error {
	n.mu.Lock()
	n.sent = append(n.sent, capturedDelivery{Recipient: recipient, Token: token, Template: template})
	n.mu.Unlock()

	n.received <- struct{}{}
	return nil
}

func (n *capturingNotifier) waitForDelivery(t *testing.T) capturedDelivery {
	t.Helper()

	select {
	case <-n.received:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for token delivery")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

func testConfig() StaticConfig {
	return StaticConfig{
		SigningKey:           "test-signing-key",
		SigningMethod:        "HS256",
		AccessTokenLifetime:  time.Hour,
		MissionTokenLifetime: time.Hour,
		ReaperInterval:       time.Minute,
	}
}

func newTestCodec() *TokenCodec {
	return NewTokenCodec([]byte("test-signing-key"), "HS256", nil)
}
