package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/app/repositories"
	"github.com/yigit/campusnet/internal/db"
)

func TestCreateDefaultDataIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	require.NoError(t, repositories.EnsureCollections(ctx, store))
	repos := repositories.NewRepositories(store, zerolog.Nop())

	require.NoError(t, CreateDefaultData(ctx, repos, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, repos, zerolog.Nop()))

	students, err := repos.Students.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, students, 2)

	faculty, err := repos.Faculty.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, faculty, 2)

	projects, err := repos.Projects.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	posts, err := repos.Posts.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "faculty", posts[0].AuthorRole)
}
