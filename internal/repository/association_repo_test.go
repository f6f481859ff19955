package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"theknife/internal/domain"
)

func TestAssociationFileRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "owners.csv")
	repo := NewOwnershipFileRepository(path, zap.NewNop())

	items := []domain.Association{
		{Key: "zoe", RestaurantName: "B"},
		{Key: "adam", RestaurantName: "Trattoria, da Mario"},
	}
	require.NoError(t, repo.Save(ctx, items))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ownerId,restaurantName\nadam,\"Trattoria, da Mario\"\nzoe,B\n", string(data))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Association{
		{Key: "adam", RestaurantName: "Trattoria, da Mario"},
		{Key: "zoe", RestaurantName: "B"},
	}, got)
}

func TestAssociationFileRepository_SkipsBadRows(t *testing.T) {
	path := writeFixture(t, "userId,restaurantName\nanna,Osteria\nlonely\n,NoUser\nbob,\n")
	repo := NewFavoriteFileRepository(path, zap.NewNop())

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Association{{Key: "anna", RestaurantName: "Osteria"}}, got)
}

func TestAssociationFileRepository_FavoriteHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fav.csv")
	repo := NewFavoriteFileRepository(path, zap.NewNop())
	require.NoError(t, repo.Save(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "userId,restaurantName\n", string(data))
}
