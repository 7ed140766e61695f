package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rorical/katabasis/internal/api"
	"github.com/Rorical/katabasis/internal/app"
	"github.com/Rorical/katabasis/internal/config"
	"github.com/Rorical/katabasis/internal/devserver"
	"github.com/Rorical/katabasis/internal/models"
)

const echoHello = `[guide] I hear you. You said "hello". Tell me more.`

// setup points the config at a fresh home and the base URL at a dev server.
func setup(t *testing.T) *api.Client {
	t.Helper()
	tokens := devserver.NewTokenIssuer([]byte("test-secret"), time.Hour)
	srv := httptest.NewServer(devserver.NewServer(devserver.NewRegistryWithCost(bcrypt.MinCost), tokens, devserver.EchoResponder{}, nil).Handler())
	t.Cleanup(srv.Close)

	for _, k := range []string{"KATABASIS_PROFILE", "KATABASIS_PERSONA", "KATABASIS_REQUEST_TIMEOUT", "KATABASIS_CREDENTIAL_STORE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("KATABASIS_HOME", t.TempDir())
	t.Setenv("KATABASIS_BASE_URL", srv.URL)

	profileName, verbose, ephemeral, plain, assumeYes, loginUsername = "", false, false, false, false, ""
	return api.NewClient(srv.URL, api.WithHTTPClient(srv.Client()))
}

// loggedIn registers orpheus and stores a token the way `katabasis login` would.
func loggedIn(t *testing.T, client *api.Client) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, client.Signup(ctx, api.SignupRequest{Username: "orpheus", Email: "o@example.com", Password: "lyre"}))
	resp, err := client.Login(ctx, api.LoginRequest{Username: "orpheus", Password: "lyre"})
	require.NoError(t, err)

	rt := openTestRuntime(t)
	require.NoError(t, rt.Session.Establish(resp.AccessToken))
	require.NoError(t, rt.Close())
}

func openTestRuntime(t *testing.T) *app.Runtime {
	t.Helper()
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	rt, err := app.OpenRuntime(cfg, nil, false)
	require.NoError(t, err)
	return rt
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestSayPrintsReply(t *testing.T) {
	loggedIn(t, setup(t))

	out, _, err := runCLI(t, "", "say", "hello")
	require.NoError(t, err)
	assert.Equal(t, echoHello+"\n", out)
}

func TestSayRequiresLogin(t *testing.T) {
	setup(t)

	_, _, err := runCLI(t, "", "say", "hello")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestPlainChatReadsLines(t *testing.T) {
	loggedIn(t, setup(t))

	out, _, err := runCLI(t, "hello\n\n   \nhello\n/quit\nnot sent\n", "chat", "--plain")
	require.NoError(t, err)
	assert.Equal(t, echoHello+"\n"+echoHello+"\n", out)
}

func TestPlainChatEndsWhenIdentityIsUnknown(t *testing.T) {
	client := setup(t)
	loggedIn(t, client)

	rt := openTestRuntime(t)
	token, _ := rt.Session.Token()
	require.NoError(t, rt.Close())
	require.NoError(t, client.DeleteAccount(context.Background(), token))

	out, errOut, err := runCLI(t, "hello\nhello\n", "chat", "--plain")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "katabasis login")

	rt = openTestRuntime(t)
	defer rt.Close()
	assert.False(t, rt.Session.Authenticated(), "an unknown identity drops the stored token")
}

func TestLogout(t *testing.T) {
	loggedIn(t, setup(t))

	out, _, err := runCLI(t, "", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)

	rt := openTestRuntime(t)
	defer rt.Close()
	assert.False(t, rt.Session.Authenticated())
}

func TestDeleteAccountSkipsPromptWithYes(t *testing.T) {
	client := setup(t)
	loggedIn(t, client)

	out, _, err := runCLI(t, "", "delete-account", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Account deleted\n", out)

	_, err = client.Login(context.Background(), api.LoginRequest{Username: "orpheus", Password: "lyre"})
	assert.Error(t, err)

	rt := openTestRuntime(t)
	defer rt.Close()
	assert.False(t, rt.Session.Authenticated())
}

func TestDeleteAccountRequiresLogin(t *testing.T) {
	setup(t)

	_, _, err := runCLI(t, "", "delete-account", "--yes")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestUnknownProfileFlag(t *testing.T) {
	setup(t)

	_, _, err := runCLI(t, "", "--profile", "nope", "say", "hello")
	assert.ErrorIs(t, err, config.ErrProfileNotFound)
}

func TestProfileListAndShow(t *testing.T) {
	setup(t)
	t.Setenv("KATABASIS_PERSONA", "ferryman")

	out, _, err := runCLI(t, "", "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Active Profile: default")
	assert.Contains(t, out, "  default (active)")

	out, _, err = runCLI(t, "", "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile: default")
	assert.Contains(t, out, "Persona: ferryman")
	assert.Contains(t, out, "Credential store: file")
}

func TestPrintEffects(t *testing.T) {
	var buf bytes.Buffer
	effects := printEffects{out: &buf}

	effects.Notify(models.Notice{Title: "Account not deleted", Message: "Failed to delete account. Please try again.", Detail: "User not found"})
	effects.Navigate(models.ViewChat)
	effects.Navigate(models.ViewLogin)

	assert.Equal(t, "Account not deleted: Failed to delete account. Please try again.\n  User not found\n"+
		"You are signed out. Run `katabasis login` to sign in again.\n", buf.String())
}
