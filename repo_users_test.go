package userauth

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersConfirmIsOneWay(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, repo)

	require.NoError(t, repo.Users().Confirm(context.Background(), user.ID))

	stored, err := repo.Users().GetByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.True(t, stored.IsConfirmed)

	// A second confirm matches no row; the guard keeps the statement from
	// touching already-confirmed accounts.
	err = repo.Users().Confirm(context.Background(), user.ID)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersConfirmUnknownID(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)

	err := repo.Users().Confirm(context.Background(), uuid.New())
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersResetPassword(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, repo)

	require.NoError(t, repo.Users().ResetPassword(context.Background(), user.ID, "new-hash"))

	stored, err := repo.Users().GetByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", stored.PasswordHash)

	err = repo.Users().ResetPassword(context.Background(), uuid.New(), "new-hash")
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersRemove(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, repo)

	require.NoError(t, repo.Users().Remove(context.Background(), user.ID))

	_, err := repo.Users().GetByEmail(context.Background(), user.Email)
	assert.True(t, repository.IsRecordNotFound(err))

	err = repo.Users().Remove(context.Background(), user.ID)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersListUnconfirmed(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)

	a := seedUser(t, repo)
	b := seedUser(t, repo)
	seedUser(t, repo, confirmed())

	unconfirmed, err := repo.Users().ListUnconfirmed(context.Background())
	require.NoError(t, err)
	require.Len(t, unconfirmed, 2)

	ids := []uuid.UUID{unconfirmed[0].ID, unconfirmed[1].ID}
	assert.Contains(t, ids, a.ID)
	assert.Contains(t, ids, b.ID)
}

func TestUsersRemoveBatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)

	a := seedUser(t, repo)
	b := seedUser(t, repo)
	keep := seedUser(t, repo)

	n, err := repo.Users().RemoveBatchTx(context.Background(), db, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.Users().GetByEmail(context.Background(), keep.Email)
	assert.NoError(t, err)

	n, err = repo.Users().RemoveBatchTx(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUsersCreateDuplicateEmailIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, repo)

	dup := &User{
		FirstName:    "Copy",
		LastName:     "Cat",
		Email:        user.Email,
		PasswordHash: testPasswordHash(t),
	}

	_, err := repo.Users().Create(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`)))
}

func TestUsersResolveByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	user := seedUser(t, repo)

	resolved, err := repo.Users().ResolveByID(context.Background(), user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.Email, resolved.Email)

	_, err = repo.Users().ResolveByID(context.Background(), "not-a-uuid")
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = repo.Users().ResolveByID(context.Background(), uuid.NewString())
	assert.True(t, repository.IsRecordNotFound(err))
}
