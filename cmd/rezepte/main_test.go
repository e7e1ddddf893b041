package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"rezepte/internal/backend"
	"rezepte/internal/logging"
	"rezepte/internal/recipe"
	"rezepte/internal/session"
	"rezepte/internal/viewmodel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cli struct {
	t       *testing.T
	dir     string
	apiURL  string
	session string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	for _, k := range []string{
		"REZEPTE_API_URL", "REZEPTE_TIMEOUT", "REZEPTE_DARK_MODE", "REZEPTE_SESSION_FILE",
		"REZEPTE_DB_DRIVER", "REZEPTE_DB_DSN", "REZEPTE_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Cleanup(logging.Reset)

	store, err := backend.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(backend.NewServer(store, zap.NewNop().Sugar()))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	return &cli{t: t, dir: dir, apiURL: srv.URL, session: filepath.Join(dir, "session.yaml")}
}

// run executes the root command with the test's config, API and session file.
func (c *cli) run(args ...string) (stdout, stderr string, err error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(c.dir, "config.yaml"),
		"--api-url", c.apiURL,
		"--session", c.session,
	}, args...))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRecipeCommands(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run("add", "Pizza", "Teig ausrollen", "--category", "Hauptgericht", "--user-id", "123")
	require.NoError(t, err)
	assert.Contains(t, out, `Rezept "Pizza" gespeichert`)

	_, _, err = c.run("add", "Pfannkuchen", "Verrühren", "--user-id", "123")
	require.NoError(t, err)

	out, _, err = c.run("list", "--json", "--user-id", "123")
	require.NoError(t, err)
	var listed []recipe.Recipe
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Pizza", listed[0].Name)
	assert.Equal(t, "Hauptgericht", listed[0].Category)
	assert.Equal(t, 123, listed[0].UserID)

	out, _, err = c.run("list", "--search", "Pi", "--user-id", "123")
	require.NoError(t, err)
	assert.Contains(t, out, "Pizza")
	assert.NotContains(t, out, "Pfannkuchen")

	out, _, err = c.run("list", "--user-id", "999")
	require.NoError(t, err)
	assert.Contains(t, out, "Keine Rezepte gefunden.", "other users see nothing")

	_, _, err = c.run("delete", "2", "--user-id", "999")
	assert.Error(t, err, "cannot delete someone else's recipe")

	out, _, err = c.run("delete", "1", "--user-id", "123")
	require.NoError(t, err)
	assert.Contains(t, out, "Rezept #1 gelöscht")

	_, _, err = c.run("delete", "1", "--user-id", "123")
	assert.Error(t, err, "second delete hits a 404")

	out, _, err = c.run("list", "--search", "Pizza", "--user-id", "123")
	require.NoError(t, err)
	assert.Contains(t, out, "Keine Rezepte gefunden.")
}

func TestList_Anonymous(t *testing.T) {
	c := newCLI(t)

	out, errOut, err := c.run("list")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Willkommen!")
}

func TestAdd_RequiresLogin(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run("add", "Pizza", "Backen")
	assert.ErrorIs(t, err, viewmodel.ErrNotLoggedIn)
}

func TestDelete_InvalidID(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run("delete", "abc", "--user-id", "1")
	assert.ErrorContains(t, err, "invalid recipe id")
}

func TestSessionCommands(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run("session")
	require.NoError(t, err)
	assert.Equal(t, "anonym\n", out)

	_, _, err = c.run("session", "login")
	assert.ErrorContains(t, err, "--user-id")

	out, _, err = c.run("session", "login", "--user-id", "7", "--username", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "eingeloggt als bob (#7)")

	sess, err := session.Load(c.session)
	require.NoError(t, err)
	assert.Equal(t, session.LoggedIn(7, "bob"), sess)

	// The session file now gates the recipe commands.
	_, _, err = c.run("add", "Suppe", "Kochen")
	require.NoError(t, err)

	out, _, err = c.run("session")
	require.NoError(t, err)
	assert.Equal(t, "eingeloggt als bob (#7)\n", out)

	out, _, err = c.run("session", "logout")
	require.NoError(t, err)
	assert.Equal(t, "ausgeloggt\n", out)

	out, _, err = c.run("session")
	require.NoError(t, err)
	assert.Equal(t, "anonym\n", out)
}

func TestInvalidConfig(t *testing.T) {
	c := newCLI(t)
	c.apiURL = "ftp://example.com"

	_, _, err := c.run("list")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid config"))
}

func TestServe_InvalidDriver(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run("serve", "--driver", "oracle")
	assert.ErrorContains(t, err, "invalid backend driver")
}
