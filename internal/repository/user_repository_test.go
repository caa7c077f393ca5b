package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/docstore"
	"github.com/spec-kit/ticket-tracker/internal/domain"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(docstore.NewMemoryStore())

	account := &domain.Account{
		Email:        "  Ana@Example.com ",
		DisplayName:  "Ana",
		PasswordHash: "hash",
		ProviderIDs:  []string{domain.ProviderIDPassword},
	}
	require.NoError(t, repo.Create(ctx, account))
	require.NotEmpty(t, account.UID)
	assert.Equal(t, "ana@example.com", account.Email)
	assert.Equal(t, domain.UserRoleOperator, mustGet(t, repo, account.UID).Role)

	byEmail, err := repo.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.UID, byEmail.UID)
	assert.Equal(t, []string{domain.ProviderIDPassword}, byEmail.ProviderIDs)

	byEmail.DisplayName = "Ana María"
	byEmail.Role = domain.UserRoleAdministrator
	require.NoError(t, repo.Update(ctx, byEmail))

	byID, err := repo.GetByID(ctx, account.UID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", byID.DisplayName)
	assert.Equal(t, "hash", byID.PasswordHash)
	assert.Equal(t, domain.UserRoleAdministrator, byID.Role)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.Account{UID: "missing"}), domain.ErrNotFound)
}

func mustGet(t *testing.T, repo UserRepository, uid string) *domain.Account {
	t.Helper()
	account, err := repo.GetByID(context.Background(), uid)
	require.NoError(t, err)
	return account
}
