package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sandeepkv93/todosync/internal/fakeapi"
	"github.com/sandeepkv93/todosync/internal/model"
	"github.com/sandeepkv93/todosync/internal/storage"
)

func newBackend(t *testing.T) (*fakeapi.Server, string) {
	t.Helper()
	t.Setenv("TODOSYNC_CONFIG", "")
	srv := fakeapi.New(storage.NewMemoryRepository(), fakeapi.Options{})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

func run(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	out, _, err := execute(t, append(args, "--base-url", baseURL, "--log-file", "")...)
	return out, err
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, baseURL string, args ...string) string {
	t.Helper()
	out, err := run(t, baseURL, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestAddListDoneEditRemove(t *testing.T) {
	_, url := newBackend(t)

	if out := mustRun(t, url, "ls"); !strings.Contains(out, "(no tasks)") {
		t.Fatalf("expected empty listing, got %q", out)
	}
	if out := mustRun(t, url, "add", "buy", "milk"); !strings.Contains(out, `added "buy milk"`) {
		t.Fatalf("unexpected add output: %q", out)
	}
	mustRun(t, url, "add", "walk dog", "--done")

	out := mustRun(t, url, "ls")
	first, second := strings.Index(out, "buy milk"), strings.Index(out, "walk dog")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected both tasks in insertion order, got %q", out)
	}
	if !strings.Contains(out, "[ ]") || !strings.Contains(out, "[x]") {
		t.Fatalf("expected one pending and one done marker, got %q", out)
	}

	out = mustRun(t, url, "ls", "--group")
	if !strings.Contains(out, "Pending (1)") || !strings.Contains(out, "Done (1)") {
		t.Fatalf("unexpected grouped listing: %q", out)
	}

	if out := mustRun(t, url, "done", "1"); !strings.Contains(out, `"buy milk" is done`) {
		t.Fatalf("unexpected done output: %q", out)
	}
	out = mustRun(t, url, "ls", "--group")
	if !strings.Contains(out, "Done (2)") {
		t.Fatalf("expected both done, got %q", out)
	}

	if out := mustRun(t, url, "edit", "2", "--title", "walk cat", "--undone"); !strings.Contains(out, `saved "walk cat"`) {
		t.Fatalf("unexpected edit output: %q", out)
	}
	out = mustRun(t, url, "ls", "--group")
	if !strings.Contains(out, "walk cat") || strings.Contains(out, "walk dog") || !strings.Contains(out, "Pending (1)") {
		t.Fatalf("unexpected listing after edit: %q", out)
	}

	if out := mustRun(t, url, "rm", "1"); !strings.Contains(out, `removed "buy milk"`) {
		t.Fatalf("unexpected rm output: %q", out)
	}
	out = mustRun(t, url, "ls")
	if strings.Contains(out, "buy milk") || !strings.Contains(out, "walk cat") {
		t.Fatalf("unexpected listing after rm: %q", out)
	}
}

func TestIndexErrors(t *testing.T) {
	_, url := newBackend(t)
	mustRun(t, url, "add", "only")

	if _, err := run(t, url, "done", "5"); err == nil || !strings.Contains(err.Error(), "out_of_range") {
		t.Fatalf("expected out of range error, got %v", err)
	}
	if _, err := run(t, url, "rm", "abc"); err == nil || !strings.Contains(err.Error(), "invalid_argument") {
		t.Fatalf("expected invalid argument error, got %v", err)
	}
	if _, err := run(t, url, "edit", "1"); err == nil || !strings.Contains(err.Error(), "nothing to change") {
		t.Fatalf("expected nothing-to-change error, got %v", err)
	}
	if _, err := run(t, url, "edit", "1", "--done", "--undone"); err == nil {
		t.Fatal("expected --done and --undone to conflict")
	}
}

func TestServerFailureIsReported(t *testing.T) {
	srv, url := newBackend(t)
	srv.FailNext(http.StatusInternalServerError)

	_, err := run(t, url, "add", "doomed")
	if err == nil || !strings.Contains(err.Error(), "add:") {
		t.Fatalf("expected add failure, got %v", err)
	}
	if out := mustRun(t, url, "ls"); strings.Contains(out, "doomed") {
		t.Fatalf("failed create should not be listed, got %q", out)
	}
}

func TestRefreshFailureAfterCreateIsAWarning(t *testing.T) {
	t.Setenv("TODOSYNC_CONFIG", "")
	srv := fakeapi.New(storage.NewMemoryRepository(), fakeapi.Options{})
	var created atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if created.Load() && r.Method == http.MethodGet {
			http.Error(w, "list unavailable", http.StatusServiceUnavailable)
			return
		}
		if r.Method == http.MethodPost {
			created.Store(true)
		}
		srv.ServeHTTP(w, r)
	}))
	defer ts.Close()

	out, stderr, err := execute(t, "add", "buy milk", "--base-url", ts.URL, "--log-file", "")
	if err != nil {
		t.Fatalf("create went through, expected success, got %v", err)
	}
	if !strings.Contains(out, `added "buy milk"`) {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(stderr, "change applied, but reloading the list failed") {
		t.Fatalf("expected stale list warning, got %q", stderr)
	}
}

func TestUnreachableServer(t *testing.T) {
	t.Setenv("TODOSYNC_CONFIG", "")
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	if _, err := run(t, url, "ls"); err == nil || !strings.Contains(err.Error(), "refresh") {
		t.Fatalf("expected refresh failure, got %v", err)
	}
}

func TestHeadlessCommandsLogToStderrOnly(t *testing.T) {
	t.Setenv("TODOSYNC_CONFIG", "")
	t.Setenv("TODOSYNC_LOG_FILE", "todosync.log")
	chdirForTest(t, t.TempDir())
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, stderr, err := execute(t, "ls", "--base-url", url)
	if err == nil {
		t.Fatal("expected refresh failure")
	}
	if !strings.Contains(stderr, "level=WARN") || !strings.Contains(stderr, "refresh failed") {
		t.Fatalf("expected warning on stderr, got %q", stderr)
	}
	if _, statErr := os.Stat("todosync.log"); !os.IsNotExist(statErr) {
		t.Fatalf("headless command should not create a log file, stat err: %v", statErr)
	}
}

func TestInvalidLogLevelFailsBeforeRunning(t *testing.T) {
	_, url := newBackend(t)
	if _, err := run(t, url, "ls", "--log-level", "loud"); err == nil || !strings.Contains(err.Error(), "loud") {
		t.Fatalf("expected log level error, got %v", err)
	}
}

func TestPrintItemsKeepsIndexesWhenGrouped(t *testing.T) {
	var buf bytes.Buffer
	printItems(&buf, []model.Item{
		{ID: "a", Title: "first", Completed: true},
		{ID: "b", Title: "second"},
	}, true)
	out := buf.String()
	pending, done := strings.Index(out, "Pending (1)"), strings.Index(out, "Done (1)")
	if pending < 0 || done < pending {
		t.Fatalf("expected pending before done, got %q", out)
	}
	if !strings.Contains(out[pending:done], "2.") || !strings.Contains(out[done:], "1.") {
		t.Fatalf("expected original indexes, got %q", out)
	}

	buf.Reset()
	printItems(&buf, nil, true)
	if !strings.Contains(buf.String(), "(no tasks)") {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}
}

func TestFailWritesMarker(t *testing.T) {
	var buf bytes.Buffer
	fail(&buf, "boom")
	if !strings.Contains(buf.String(), "✖ boom") {
		t.Fatalf("unexpected fail output: %q", buf.String())
	}
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}
