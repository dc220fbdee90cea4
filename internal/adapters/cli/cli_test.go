package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-manager/internal/adapters/storage"
	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/bootstrap"
	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/mocks"
	"github.com/jsamuelsen/quote-manager/internal/platform/config"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// cliEnv shares one in-memory backend across invocations, like a data dir
// shared by successive quotectl runs.
type cliEnv struct {
	slots  *storage.FileStore
	remote ports.RemoteQuotes
}

func newCLIEnv(t *testing.T) (*cliEnv, *mocks.MockRemoteQuotes) {
	t.Helper()

	remote := mocks.NewMockRemoteQuotes(t)

	return &cliEnv{slots: storage.NewMemoryStore(), remote: remote}, remote
}

func (e *cliEnv) open(ctx context.Context, _ string) (*bootstrap.Container, error) {
	cfg := &config.Config{
		App:     config.AppConfig{Name: "quotectl", Version: "test", Environment: "test"},
		Storage: config.StorageConfig{Driver: "memory"},
		Sync:    config.SyncConfig{PushEnabled: true},
	}

	return bootstrap.New(ctx, bootstrap.Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Slots:  e.slots,
		Remote: e.remote,
	})
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	root := NewRootCmd(e.open)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := e.run(t, "", args...)
	require.NoError(t, err, "quotectl %s", strings.Join(args, " "))

	return out
}

func (e *cliEnv) seed(t *testing.T) {
	t.Helper()

	e.mustRun(t, "add", "--id", "q1", "-t", "Be bold.", "-c", "Motivation", "-a", "Ann")
	e.mustRun(t, "add", "--id", "q2", "-t", "Know thyself.", "-c", "Wisdom")
	e.mustRun(t, "add", "--id", "q3", "-t", "Keep going.", "-c", "Motivation")
}

func listJSON(t *testing.T, e *cliEnv, args ...string) domain.Collection {
	t.Helper()

	var quotes domain.Collection
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, append([]string{"-f", "json", "list"}, args...)...)), &quotes))

	return quotes
}

func TestAddAndList(t *testing.T) {
	env, _ := newCLIEnv(t)

	assert.Equal(t, domain.Collection{}, listJSON(t, env))

	out := env.mustRun(t, "add", "--id", "q1", "-t", "  Be bold. ", "-c", "Motivation", "-a", "Ann")
	assert.Contains(t, out, `"Be bold." - Ann`)
	assert.Contains(t, out, "[Motivation] q1")

	env.mustRun(t, "add", "--id", "q2", "-t", "Know thyself.", "-c", "Wisdom")

	quotes := listJSON(t, env)
	require.Len(t, quotes, 2)
	assert.Equal(t, "Be bold.", quotes[0].Text)

	text := env.mustRun(t, "list", "--category", "wisdom")
	assert.Contains(t, text, "Know thyself.")
	assert.NotContains(t, text, "Be bold.")
}

func TestAdd_Errors(t *testing.T) {
	env, _ := newCLIEnv(t)

	_, err := env.run(t, "", "add", "-c", "Motivation")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text")

	_, err = env.run(t, "", "add", "-t", "   ", "-c", "Motivation")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	env.mustRun(t, "add", "--id", "q1", "-t", "One", "-c", "x")

	_, err = env.run(t, "", "add", "--id", "q1", "-t", "Two", "-c", "x")
	require.Error(t, err)
}

func TestRm(t *testing.T) {
	env, _ := newCLIEnv(t)
	env.seed(t)

	out := env.mustRun(t, "rm", "q2")
	assert.Equal(t, "removed q2\n", out)

	out = env.mustRun(t, "-f", "json", "rm", "--index", "1")

	var removed domain.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &removed))
	assert.Equal(t, "q3", removed.ID)

	quotes := listJSON(t, env)
	require.Len(t, quotes, 1)
	assert.Equal(t, "q1", quotes[0].ID)

	_, err := env.run(t, "", "rm", "missing")
	assert.True(t, domain.IsNotFound(err))

	_, err = env.run(t, "", "rm", "--index", "7")
	require.Error(t, err)

	_, err = env.run(t, "", "rm")
	require.EqualError(t, err, "give either an ID or --index")

	_, err = env.run(t, "", "rm", "q1", "--index", "0")
	require.EqualError(t, err, "give either an ID or --index")
}

func TestCategories(t *testing.T) {
	env, _ := newCLIEnv(t)
	env.seed(t)

	assert.Equal(t, "Motivation\nWisdom\n", env.mustRun(t, "categories"))

	var categories []string
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "-f", "json", "categories")), &categories))
	assert.Equal(t, []string{"Motivation", "Wisdom"}, categories)
}

func TestCategoryAndRandom(t *testing.T) {
	env, _ := newCLIEnv(t)
	env.seed(t)

	assert.Equal(t, "all\n", env.mustRun(t, "category"))
	assert.Equal(t, "Wisdom\n", env.mustRun(t, "category", "Wisdom"))

	// The selection persists across runs.
	assert.Contains(t, env.mustRun(t, "-f", "json", "category"), `"category": "Wisdom"`)

	for range 5 {
		assert.Contains(t, env.mustRun(t, "random"), "Know thyself.")
	}

	out := env.mustRun(t, "-f", "json", "random", "--category", "Motivation")

	var q domain.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, "Motivation", q.Category)

	_, err := env.run(t, "", "random", "--category", "Nope")
	assert.True(t, domain.IsNotFound(err))
}

func TestExportImport(t *testing.T) {
	env, _ := newCLIEnv(t)
	env.seed(t)

	exported := env.mustRun(t, "export")

	var quotes domain.Collection
	require.NoError(t, json.Unmarshal([]byte(exported), &quotes))
	require.Len(t, quotes, 3)

	path := filepath.Join(t.TempDir(), "quotes.json")
	env.mustRun(t, "export", "-o", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, exported, string(data))

	other, _ := newCLIEnv(t)
	out := other.mustRun(t, "import", path)
	assert.Equal(t, "imported 3, skipped 0\n", out)
	assert.Equal(t, quotes, listJSON(t, other))

	doc := `[{"id":"q1","text":"dup","category":"x"},{"text":"Fresh.","category":"New"},42]`

	out, err = env.run(t, doc, "-f", "json", "import")
	require.NoError(t, err)

	var result app.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Imported, 1)
	assert.Equal(t, "Fresh.", result.Imported[0].Text)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, "duplicate id", result.Skipped[0].Reason)
	assert.Equal(t, 2, result.Skipped[1].Index)

	_, err = env.run(t, `{"not":"an array"}`, "import", "-")
	assert.True(t, domain.IsDecode(err))

	_, err = env.run(t, "", "import", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestImportReplace(t *testing.T) {
	env, _ := newCLIEnv(t)
	env.seed(t)

	doc := `[{"id":"r1","text":"Only this.","category":"Restored"}]`

	out, err := env.run(t, doc, "import", "--replace")
	require.NoError(t, err)
	assert.Equal(t, "restored 1 quotes\n", out)
	assert.Equal(t, domain.Collection{{ID: "r1", Text: "Only this.", Category: "Restored"}}, listJSON(t, env))
	assert.Equal(t, "Restored\n", env.mustRun(t, "categories"))

	_, err = env.run(t, `[{"text":"no category"}]`, "import", "--replace")
	assert.True(t, domain.IsValidation(err))
	assert.Len(t, listJSON(t, env), 1)
}

func TestSync(t *testing.T) {
	env, remote := newCLIEnv(t)
	env.mustRun(t, "add", "--id", "1", "-t", "old", "-c", "Remote")

	remote.EXPECT().FetchRemote(mock.Anything).Return(domain.Collection{
		{ID: "1", Text: "new", Category: "Remote"},
		{ID: "2", Text: "added", Category: "Remote"},
	}, nil).Once()
	remote.EXPECT().PushLocal(mock.Anything, mock.Anything).Return(nil).Once()

	out := env.mustRun(t, "sync")
	assert.Contains(t, out, "status: ok")
	assert.Contains(t, out, "fetched 2, added 1, updated 1, malformed 0")
	assert.Contains(t, out, "pushed 2")

	quotes := listJSON(t, env)
	require.Len(t, quotes, 2)
	assert.Equal(t, "new", quotes[0].Text)
}

func TestSync_Failure(t *testing.T) {
	env, remote := newCLIEnv(t)

	remote.EXPECT().FetchRemote(mock.Anything).
		Return(nil, domain.NewNetworkError("remote", "fetch quotes", "connection refused"))

	out, err := env.run(t, "", "-f", "json", "sync")
	require.ErrorIs(t, err, ErrSyncFailed)
	assert.Contains(t, err.Error(), "fetch")

	var summary domain.SyncSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, domain.SyncStatusFailed, summary.Status)
	assert.Equal(t, "network", summary.ErrorKind)
}

type checkedRemote struct {
	*mocks.MockRemoteQuotes
	ports.HealthCheckFunc
}

func TestDoctor(t *testing.T) {
	env, _ := newCLIEnv(t)

	out := env.mustRun(t, "doctor")
	assert.Contains(t, out, "quote-store")
	assert.Contains(t, out, "storage-memory")
	assert.Contains(t, out, "overall: healthy")

	env.remote = checkedRemote{
		MockRemoteQuotes: mocks.NewMockRemoteQuotes(t),
		HealthCheckFunc: ports.HealthCheckFunc{
			CheckName: "remote-quotes",
			Fn:        func(context.Context) error { return errors.New("dial tcp: refused") },
		},
	}

	out, err := env.run(t, "", "-f", "json", "doctor")
	require.ErrorIs(t, err, ErrUnhealthy)

	var result ports.HealthResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, ports.HealthStatusUnhealthy, result.Status)
	require.Contains(t, result.Checks, "remote-quotes")
	assert.Equal(t, "dial tcp: refused", result.Checks["remote-quotes"].Message)
	assert.Equal(t, ports.HealthStatusHealthy, result.Checks["quote-store"].Status)
}

func TestRoot_Errors(t *testing.T) {
	env, _ := newCLIEnv(t)

	_, err := env.run(t, "", "-f", "yaml", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	failing := NewRootCmd(func(context.Context, string) (*bootstrap.Container, error) {
		return nil, errors.New("no disk")
	})
	failing.SetOut(io.Discard)
	failing.SetArgs([]string{"list"})

	err = failing.ExecuteContext(context.Background())
	require.EqualError(t, err, "open store: no disk")
}
