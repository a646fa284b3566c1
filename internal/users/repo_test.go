package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/enums"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return NewRepository(conn)
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{
		Email:        "jane@example.com",
		PasswordHash: "hash",
		FirstName:    "Jane",
		LastName:     "Doe",
		SystemRole:   enums.SystemRoleUser,
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.True(t, user.IsActive)

	found, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane", byID.FirstName)
}

func TestRepositoryEmailUnique(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	dto := CreateUserDTO{
		Email:        "dup@example.com",
		PasswordHash: "hash",
		FirstName:    "First",
		LastName:     "User",
		SystemRole:   enums.SystemRoleUser,
	}
	_, err := repo.Create(ctx, dto)
	require.NoError(t, err)

	_, err = repo.Create(ctx, dto)
	require.Error(t, err)
}

func TestRepositoryListOrdersByName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, u := range []CreateUserDTO{
		{Email: "c@example.com", PasswordHash: "h", FirstName: "Cara", LastName: "Zimmer", SystemRole: enums.SystemRoleUser},
		{Email: "a@example.com", PasswordHash: "h", FirstName: "Adam", LastName: "Able", SystemRole: enums.SystemRoleUser},
		{Email: "b@example.com", PasswordHash: "h", FirstName: "Zoe", LastName: "Able", SystemRole: enums.SystemRoleAdmin},
	} {
		_, err := repo.Create(ctx, u)
		require.NoError(t, err)
	}

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Adam", rows[0].FirstName)
	require.Equal(t, "Zoe", rows[1].FirstName)
	require.Equal(t, "Zimmer", rows[2].LastName)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{
		Email:        "login@example.com",
		PasswordHash: "hash",
		FirstName:    "Log",
		LastName:     "In",
		SystemRole:   enums.SystemRoleUser,
	})
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	require.WithinDuration(t, at, *found.LastLoginAt, time.Second)
}
