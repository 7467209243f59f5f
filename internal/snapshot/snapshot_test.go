package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oss-contrib/leaderboard/internal/domain"
)

func contributor(username string, score int) *domain.Contributor {
	return &domain.Contributor{
		ID:         username,
		Username:   username,
		Score:      score,
		LastActive: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	settings := domain.DefaultSettings()

	t.Run("sorts by score descending", func(t *testing.T) {
		snap := Build([]*domain.Contributor{
			contributor("low", 5),
			contributor("high", 50),
			contributor("mid", 20),
		}, nil, nil, settings)

		var order []string
		for _, c := range snap.Contributors {
			order = append(order, c.Username)
		}
		assert.Equal(t, []string{"high", "mid", "low"}, order)
	})

	t.Run("equal scores keep first-seen order", func(t *testing.T) {
		snap := Build([]*domain.Contributor{
			contributor("first", 10),
			contributor("second", 10),
			contributor("third", 10),
		}, nil, nil, settings)

		var order []string
		for _, c := range snap.Contributors {
			order = append(order, c.Username)
		}
		assert.Equal(t, []string{"first", "second", "third"}, order)
	})

	t.Run("non-empty whitelist drops everyone else", func(t *testing.T) {
		snap := Build([]*domain.Contributor{
			contributor("x", 10),
			contributor("y", 20),
			contributor("z", 30),
		}, nil, []string{"x"}, settings)

		require.Len(t, snap.Contributors, 1)
		assert.Equal(t, "x", snap.Contributors[0].Username)
	})

	t.Run("empty whitelist keeps everyone", func(t *testing.T) {
		snap := Build([]*domain.Contributor{
			contributor("x", 10),
			contributor("y", 20),
		}, nil, nil, settings)
		assert.Len(t, snap.Contributors, 2)
	})

	t.Run("repos are marked active", func(t *testing.T) {
		snap := Build(nil, []domain.RepoRef{{Owner: "a", Name: "b"}}, nil, settings)
		require.Len(t, snap.Repos, 1)
		assert.True(t, snap.Repos[0].IsActive)
		assert.Equal(t, "a", snap.Repos[0].Owner)
		assert.Equal(t, "b", snap.Repos[0].Name)
	})

	t.Run("no contributors yields an empty slice, not nil", func(t *testing.T) {
		snap := Build(nil, nil, nil, settings)
		assert.NotNil(t, snap.Contributors)
		assert.Empty(t, snap.Contributors)
	})

	t.Run("timestamp is set", func(t *testing.T) {
		before := time.Now().UTC()
		snap := Build(nil, nil, nil, settings)
		assert.False(t, snap.Timestamp.Before(before))
	})
}

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "public", "data.json")

	snap := Build([]*domain.Contributor{
		contributor("alice", 25),
		contributor("bob", 2),
	}, []domain.RepoRef{{Owner: "o", Name: "r"}}, nil, domain.DefaultSettings())

	require.NoError(t, Write(path, snap))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Contributors, got.Contributors)
	assert.Equal(t, snap.Repos, got.Repos)
	assert.Equal(t, snap.Settings, got.Settings)
	assert.True(t, snap.Timestamp.Equal(got.Timestamp))
}

func TestWrite_LeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	require.NoError(t, Write(path, Build(nil, nil, nil, domain.DefaultSettings())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data.json", entries[0].Name())
}

func TestWrite_ReplacesExistingSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	first := Build([]*domain.Contributor{contributor("alice", 1)}, nil, nil, domain.DefaultSettings())
	require.NoError(t, Write(path, first))

	second := Build([]*domain.Contributor{contributor("bob", 2)}, nil, nil, domain.DefaultSettings())
	require.NoError(t, Write(path, second))

	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got.Contributors, 1)
	assert.Equal(t, "bob", got.Contributors[0].Username)
}

func TestRead_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		require.NoError(t, os.WriteFile(path, []byte("{half a snapsh"), 0o644))
		_, err := Read(path)
		assert.Error(t, err)
	})
}
