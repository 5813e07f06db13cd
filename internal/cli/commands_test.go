package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fixtureConfig points mailboard at the fixture mailbox with a throwaway
// data directory and returns the config path.
func fixtureConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dir, err := filepath.Abs("../provider/fixture/testdata")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf("[provider]\nkind = \"fixture\"\nfixture_dir = %q\n", dir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("mailboard %s: %v\nstderr: %s", strings.Join(args, " "), err, errOut.String())
	}
	return out.String()
}

func TestListCommand_JSON(t *testing.T) {
	cfg := fixtureConfig(t)

	var page jsonPage
	if err := json.Unmarshal([]byte(run(t, cfg, "--json", "list")), &page); err != nil {
		t.Fatalf("failed to parse list output: %v", err)
	}
	if len(page.Emails) != 3 {
		t.Fatalf("got %d emails, want 3", len(page.Emails))
	}
	for _, e := range page.Emails {
		if e.Status != "INBOX" {
			t.Errorf("email %s status = %q, want INBOX", e.ID, e.Status)
		}
	}
}

func TestStatusCommand_PersistsAcrossRuns(t *testing.T) {
	cfg := fixtureConfig(t)

	if out := run(t, cfg, "status", "18c0a2", "in-progress"); !strings.Contains(out, "18c0a2 -> IN_PROGRESS") {
		t.Errorf("status output = %q", out)
	}

	var page jsonPage
	if err := json.Unmarshal([]byte(run(t, cfg, "--json", "list")), &page); err != nil {
		t.Fatalf("failed to parse list output: %v", err)
	}
	found := false
	for _, e := range page.Emails {
		if e.ID == "18c0a2" {
			found = true
			if e.Status != "IN_PROGRESS" {
				t.Errorf("status = %q, want IN_PROGRESS", e.Status)
			}
		}
	}
	if !found {
		t.Error("18c0a2 missing from list")
	}
}

func TestSnoozeAndSnoozedCommands(t *testing.T) {
	cfg := fixtureConfig(t)

	run(t, cfg, "status", "18c0a1", "to-do")
	run(t, cfg, "snooze", "18c0a1", "--for", "2h")

	var recs []jsonSnoozed
	if err := json.Unmarshal([]byte(run(t, cfg, "--json", "snoozed")), &recs); err != nil {
		t.Fatalf("failed to parse snoozed output: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d snoozed, want 1", len(recs))
	}
	if recs[0].ID != "18c0a1" || recs[0].ReturnsTo != "TO_DO" || recs[0].SnoozedUntil == "" {
		t.Errorf("snoozed = %+v", recs[0])
	}

	var act jsonAction
	if err := json.Unmarshal([]byte(run(t, cfg, "--json", "unsnooze", "18c0a1")), &act); err != nil {
		t.Fatalf("failed to parse unsnooze output: %v", err)
	}
	if act.Status != "TO_DO" {
		t.Errorf("unsnooze status = %q, want TO_DO", act.Status)
	}
	if out := run(t, cfg, "snoozed"); !strings.Contains(out, "Nothing snoozed.") {
		t.Errorf("snoozed output = %q", out)
	}
}

func TestStatusCommand_RejectsSnoozed(t *testing.T) {
	cfg := fixtureConfig(t)

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfg, "status", "18c0a1", "snoozed"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("status SNOOZED should fail")
	}
}

func TestBoardCommand(t *testing.T) {
	cfg := fixtureConfig(t)
	run(t, cfg, "status", "18c0a4", "done")

	out := run(t, cfg, "board")
	for _, want := range []string{"INBOX (2)", "DONE (1)", "Lunch"} {
		if !strings.Contains(out, want) {
			t.Errorf("board output missing %q:\n%s", want, out)
		}
	}
}
