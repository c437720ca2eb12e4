package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/repo"
)

func seedTags(t *testing.T, r repo.TagRepo, names ...string) {
	t.Helper()
	for i, n := range names {
		require.NoError(t, r.Insert(context.Background(), domain.Tag{ID: int64(i + 1), Name: n}))
	}
}

// ---- Insert / Find ---------------------------------------------------------

func TestTagRepo_Insert_CaseInsensitiveUnique(t *testing.T) {
	r := repo.NewTagRepo(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, domain.Tag{ID: 1, Name: "Beach", Color: ptr("#00aaff")}))
	err := r.Insert(ctx, domain.Tag{ID: 2, Name: "beach"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTagRepo_FindByName(t *testing.T) {
	r := repo.NewTagRepo(newTestStore(t))
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, domain.Tag{ID: 1, Name: "Beach", Color: ptr("#00aaff")}))

	got, err := r.FindByName(ctx, "BEACH")

	require.NoError(t, err)
	assert.Equal(t, domain.Tag{ID: 1, Name: "Beach", Color: ptr("#00aaff")}, got)

	_, err = r.FindByName(ctx, "mountain")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- List ------------------------------------------------------------------

func TestTagRepo_List_Prefix(t *testing.T) {
	r := repo.NewTagRepo(newTestStore(t))
	seedTags(t, r, "rocky", "Road", "beach", "100%")

	got, err := r.List(context.Background(), "ro")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Road", got[0].Name)
	assert.Equal(t, "rocky", got[1].Name)
}

func TestTagRepo_List_WildcardsAreLiteral(t *testing.T) {
	r := repo.NewTagRepo(newTestStore(t))
	seedTags(t, r, "rocky", "100%")

	got, err := r.List(context.Background(), "%")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTagRepo_List_All(t *testing.T) {
	r := repo.NewTagRepo(newTestStore(t))
	seedTags(t, r, "c", "a", "b")

	got, err := r.List(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestTagRepo_ListPaged(t *testing.T) {
	r := repo.NewTagRepo(newTestStore(t))
	seedTags(t, r, "a1", "a2", "a3", "b1")
	limit, page := 2, 2

	got, total, err := r.ListPaged(context.Background(), "a", domain.NewPaginationParams(&page, &limit))

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, got, 1)
	assert.Equal(t, "a3", got[0].Name)
}

// ---- Update / Delete -------------------------------------------------------

func TestTagRepo_UpdateDelete(t *testing.T) {
	r := repo.NewTagRepo(newTestStore(t))
	ctx := context.Background()
	seedTags(t, r, "old")

	require.NoError(t, r.Update(ctx, domain.Tag{ID: 1, Name: "new", Color: ptr("#112233")}))
	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)

	require.NoError(t, r.Delete(ctx, 1))
	_, err = r.GetByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Update(ctx, got), domain.ErrNotFound)
}
