package cmd

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwarden/daybook/internal/events"
	"github.com/cwarden/daybook/internal/events/eventstest"
)

// execute runs the root command with args against a clean environment and
// returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, strings.NewReader(stdin), args...)
}

func executeWithInput(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	home := t.TempDir()
	t.Chdir(home)
	t.Setenv("HOME", home)
	for _, key := range []string{"DAYBOOK_CONFIG", "XDG_CONFIG_HOME", "DAYBOOK_API_URL", "DAYBOOK_AUTHOR", "DAYBOOK_LOG_FILE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	// Flag variables are package globals and survive between runs.
	cfgFile, apiURL, logFile = "", "", ""
	listDate, listMonth = "", ""
	addDate, addAuthor = "today", ""
	deleteYes = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "Daybook ") {
		t.Errorf("output = %q", out)
	}
}

func TestListMonth(t *testing.T) {
	srv := eventstest.NewServer(events.Store{
		"2025-05-01": {{ID: "a1", Author: "Kim", Content: "Meeting"}},
		"2025-05-20": {{ID: "b1", Author: "Lee", Content: "Lunch"}},
		"2025-06-01": {{ID: "c1", Author: "Park", Content: "Trip"}},
	})
	defer srv.Close()

	out, err := execute(t, "", "list", "--api-url", srv.URL, "--month", "2025-05")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	for _, want := range []string{"Events for May 2025:", "2025-05-01", "[a1] Kim: Meeting", "[b1] Lee: Lunch"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "c1") {
		t.Errorf("June event listed for May:\n%s", out)
	}
	if strings.Index(out, "2025-05-01") > strings.Index(out, "2025-05-20") {
		t.Error("dates not in ascending order")
	}
}

func TestListDay(t *testing.T) {
	srv := eventstest.NewServer(events.Store{
		"2025-05-01": {{ID: "a1", Author: "Kim", Content: "Meeting"}},
		"2025-05-02": {{ID: "a2", Author: "Lee", Content: "Lunch"}},
	})
	defer srv.Close()

	out, err := execute(t, "", "list", "--api-url", srv.URL, "--date", "2025-05-02")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Lunch") || strings.Contains(out, "Meeting") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.HasPrefix(out, "Events for May 2, 2025:") {
		t.Errorf("title not formatted from the requested day:\n%s", out)
	}

	out, err = execute(t, "", "list", "--api-url", srv.URL, "--date", "1999-01-01")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No events found.") {
		t.Errorf("empty day output:\n%s", out)
	}
}

func TestListErrors(t *testing.T) {
	srv := eventstest.NewServer(nil)
	defer srv.Close()

	tests := []struct {
		name string
		args []string
	}{
		{"both filters", []string{"list", "--api-url", srv.URL, "--date", "today", "--month", "2025-05"}},
		{"bad date", []string{"list", "--api-url", srv.URL, "--date", "whenever"}},
		{"month only date", []string{"list", "--api-url", srv.URL, "--date", "2025-05"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, "", tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}

	if n := len(srv.Requests()); n != 0 {
		t.Errorf("invalid input issued %d requests", n)
	}

	srv.Fail(http.MethodGet, http.StatusInternalServerError, "")
	if _, err := execute(t, "", "list", "--api-url", srv.URL); err == nil {
		t.Error("expected error when the backend fails")
	}
}

func TestAdd(t *testing.T) {
	srv := eventstest.NewServer(nil)
	defer srv.Close()

	out, err := execute(t, "", "add", "--api-url", srv.URL, "--date", "2025-05-01", "--author", "Kim", "Team", "meeting")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Event saved for 2025-05-01") {
		t.Errorf("output = %q", out)
	}

	got := srv.Snapshot().For("2025-05-01")
	if len(got) != 1 || got[0].Author != "Kim" || got[0].Content != "Team meeting" {
		t.Errorf("server store = %+v", got)
	}
}

func TestAddDefaultAuthor(t *testing.T) {
	srv := eventstest.NewServer(nil)
	defer srv.Close()

	rc := filepath.Join(t.TempDir(), "daybookrc")
	if err := os.WriteFile(rc, []byte("set default_author \"Lee\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "", "add", "--config", rc, "--api-url", srv.URL, "--date", "2025-05-03", "Standup"); err != nil {
		t.Fatalf("add: %v", err)
	}

	got := srv.Snapshot().For("2025-05-03")
	if len(got) != 1 || got[0].Author != "Lee" {
		t.Errorf("server store = %+v, want author from config", got)
	}
}

func TestAddWithoutAuthor(t *testing.T) {
	srv := eventstest.NewServer(nil)
	defer srv.Close()

	_, err := execute(t, "", "add", "--api-url", srv.URL, "--date", "2025-05-01", "Orphan")
	if err == nil {
		t.Fatal("expected error without author")
	}
	if srv.Count(http.MethodPost) != 0 {
		t.Error("request issued without author")
	}
}

func TestDelete(t *testing.T) {
	seed := func() *eventstest.Server {
		return eventstest.NewServer(events.Store{
			"2025-05-01": {{ID: "a1", Author: "Kim", Content: "Meeting"}},
		})
	}

	t.Run("confirmed", func(t *testing.T) {
		srv := seed()
		defer srv.Close()

		out, err := execute(t, "y\n", "delete", "--api-url", srv.URL, "a1")
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if !strings.Contains(out, "Kim: Meeting") || !strings.Contains(out, "Deleted a1") {
			t.Errorf("output = %q", out)
		}
		if srv.Snapshot().Len() != 0 {
			t.Error("event still on server")
		}
	})

	t.Run("declined", func(t *testing.T) {
		srv := seed()
		defer srv.Close()

		out, err := execute(t, "n\n", "delete", "--api-url", srv.URL, "a1")
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if !strings.Contains(out, "Cancelled.") {
			t.Errorf("output = %q", out)
		}
		if srv.Count(http.MethodDelete) != 0 {
			t.Error("declined delete reached the server")
		}
	})

	t.Run("yes flag", func(t *testing.T) {
		srv := seed()
		defer srv.Close()

		if _, err := execute(t, "", "delete", "--api-url", srv.URL, "--yes", "a1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if srv.Count(http.MethodDelete) != 1 {
			t.Error("delete not sent")
		}
	})

	t.Run("not found", func(t *testing.T) {
		srv := seed()
		defer srv.Close()

		_, err := execute(t, "", "delete", "--api-url", srv.URL, "-y", "zz")
		if err == nil || !strings.Contains(err.Error(), "Event not found") {
			t.Errorf("err = %v, want server message", err)
		}
	})
}

// slowReader hands out its answer only after delay, like a user thinking
// it over.
type slowReader struct {
	delay  time.Duration
	answer io.Reader
	waited bool
}

func (r *slowReader) Read(p []byte) (int, error) {
	if !r.waited {
		time.Sleep(r.delay)
		r.waited = true
	}
	return r.answer.Read(p)
}

func TestDeleteSlowConfirmation(t *testing.T) {
	srv := eventstest.NewServer(events.Store{
		"2025-05-01": {{ID: "a1", Author: "Kim", Content: "Meeting"}},
	})
	defer srv.Close()

	rc := filepath.Join(t.TempDir(), "daybookrc")
	if err := os.WriteFile(rc, []byte("set request_timeout 300ms\n"), 0644); err != nil {
		t.Fatal(err)
	}

	stdin := &slowReader{delay: 600 * time.Millisecond, answer: strings.NewReader("y\n")}
	out, err := executeWithInput(t, stdin, "delete", "--config", rc, "--api-url", srv.URL, "a1")
	if err != nil {
		t.Fatalf("delete after a slow answer: %v", err)
	}
	if !strings.Contains(out, "Deleted a1") {
		t.Errorf("output = %q", out)
	}
	if srv.Snapshot().Len() != 0 {
		t.Error("event still on server")
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "", "list", "--config", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for missing --config file")
	}
}
