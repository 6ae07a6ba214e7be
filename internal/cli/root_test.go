package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/favorites"
	"github.com/dukerupert/shoplist/internal/model"
)

func localEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "shoplist.db")
	t.Setenv("SHOPLIST_DATABASE_URL", "")
	t.Setenv("SHOPLIST_API_URL", "")
	t.Setenv("SHOPLIST_REALTIME_URL", "")
	t.Setenv("SHOPLIST_LIST_ID", "")
	t.Setenv("SHOPLIST_DB_PATH", dbPath)
	t.Setenv("SHOPLIST_SETTINGS_PATH", filepath.Join(t.TempDir(), "settings.yaml"))
	t.Cleanup(Close)
	return dbPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := RootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCloseAfterFailedCommand(t *testing.T) {
	localEnv(t)

	_, err := run(t, "toggle", "99")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// A failed command leaves the list open for Close.
	require.NotNil(t, instance)
	Close()
	assert.Nil(t, instance)
	Close()
}

func TestAddRecordsFavoriteBeforeClose(t *testing.T) {
	dbPath := localEnv(t)

	out, err := run(t, "add", "Vollmilch")
	require.NoError(t, err)
	assert.Contains(t, out, "Vollmilch")
	Close()

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	favs, err := favorites.NewSQL(db).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Favorite{{Name: "Vollmilch", Category: model.CategoryDairy}}, favs)
}
