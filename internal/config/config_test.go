package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config"))
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultObjectCacheSize, cfg.Core.ObjectCacheSize)
	assert.Empty(t, cfg.User.Name)
	assert.NotNil(t, cfg.Remotes)
}

func TestLoad_ParsesAllSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	content := `
[user]
name = "Jane"
email = "jane@example.com"

[core]
object_cache_size = 32

[remotes]
origin = "/srv/repo/.rgit"
`
	require.NoError(t, os.WriteFile(path, []byte(content), constants.FilePerms))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Jane", cfg.User.Name)
	assert.Equal(t, "jane@example.com", cfg.User.Email)
	assert.Equal(t, 32, cfg.Core.ObjectCacheSize)

	remote, err := cfg.Remote("origin")
	require.NoError(t, err)
	assert.Equal(t, "/srv/repo/.rgit", remote)
}

func TestLoad_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("[user\nname ="), constants.FilePerms))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	cfg := Default()
	require.NoError(t, cfg.Set("user.name", "Sam"))
	require.NoError(t, cfg.Set("remotes.backup", "/mnt/backup/.rgit"))
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestAuthor(t *testing.T) {
	cfg := Default()

	_, ok := cfg.Author()
	assert.False(t, ok)

	cfg.User.Name = "Sam"
	author, ok := cfg.Author()
	assert.True(t, ok)
	assert.Equal(t, "Sam", author)

	cfg.User.Email = "sam@example.com"
	author, _ = cfg.Author()
	assert.Equal(t, "Sam <sam@example.com>", author)
}

func TestRemote_NotConfigured(t *testing.T) {
	_, err := Default().Remote("origin")
	assert.ErrorIs(t, err, ErrRemoteNotFound)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("core.object_cache_size", "8"))
	value, err := cfg.Get("core.object_cache_size")
	require.NoError(t, err)
	assert.Equal(t, "8", value)

	assert.Error(t, cfg.Set("core.object_cache_size", "many"))
	assert.ErrorIs(t, cfg.Set("core.editor", "vi"), ErrUnknownKey)

	_, err = cfg.Get("remotes")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestKeys(t *testing.T) {
	cfg := Default()
	cfg.User.Name = "Sam"
	cfg.Remotes["b"] = "/b"
	cfg.Remotes["a"] = "/a"

	assert.Equal(t, []string{"user.name", "core.object_cache_size", "remotes.a", "remotes.b"}, cfg.Keys())
}
