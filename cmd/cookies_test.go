package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

func TestLoadCookiesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"sid","value":"abc"},{"name":"","value":"dropped"}]`), 0o600))

	cookies, err := loadCookies(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.Cookie{{Name: "sid", Value: "abc"}}, cookies)
}

func TestLoadCookiesLineFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(path, []byte("# session\nsid=abc\nutag_main=v1$_st:123\n"), 0o600))

	cookies, err := loadCookies(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.Cookie{
		{Name: "sid", Value: "abc"},
		{Name: "utag_main", Value: "v1$_st:123"},
	}, cookies)
}

func TestLoadCookiesRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(path, []byte("no separator here\n"), 0o600))

	_, err := loadCookies(path)
	assert.Error(t, err)
}

func TestSaveCookiesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cookies.json")
	cookies := []domain.Cookie{{Name: "sid", Value: "abc"}}

	require.NoError(t, saveCookies(path, cookies))

	loaded, err := loadCookies(path)
	require.NoError(t, err)
	assert.Equal(t, cookies, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
