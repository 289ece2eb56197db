package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FSlyne/gnote/internal/dashboard"
	"github.com/FSlyne/gnote/internal/scanner"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("gnote %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func writeNotes(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.txt": "[ ] call plumber\n#house\n",
		"b.md":  "# Garden\n\n- [x] plant bulbs\n\n#house #garden\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestScanCommand(t *testing.T) {
	dir := writeNotes(t)
	out := run(t, "scan", filepath.Join(dir, "a.txt"))

	var res scanner.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(res.Items) != 2 || res.Items[0].Text != "call plumber" {
		t.Errorf("unexpected items %+v", res.Items)
	}
}

func TestTagsCommand(t *testing.T) {
	dir := writeNotes(t)
	var m map[string][]string
	if err := json.Unmarshal([]byte(run(t, "tags", dir)), &m); err != nil {
		t.Fatal(err)
	}
	if len(m["#house"]) != 2 || len(m["#garden"]) != 1 {
		t.Errorf("unexpected index %v", m)
	}

	var docs []string
	if err := json.Unmarshal([]byte(run(t, "tags", dir, "--filter", "#house,#garden")), &docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0] != "b.md" {
		t.Errorf("expected only b.md, got %v", docs)
	}
}

func TestTagsCommand_LogsBadComments(t *testing.T) {
	dir := writeNotes(t)
	if err := os.WriteFile(filepath.Join(dir, "a.txt.comments.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"tags", dir, "-v"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("tags: %v\n%s", err, errOut.String())
	}

	var m map[string][]string
	if err := json.Unmarshal(out.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if len(m["#house"]) != 2 {
		t.Errorf("expected a.txt still indexed, got %v", m)
	}
	logs := errOut.String()
	if !strings.Contains(logs, "skipping comments") || !strings.Contains(logs, "a.txt") {
		t.Errorf("expected comment failure logged, got %q", logs)
	}
}

func TestSyncThenDashboard(t *testing.T) {
	dir := writeNotes(t)
	db := filepath.Join(t.TempDir(), "gnote.sqlite")

	out := run(t, "sync", dir, "--db", db)
	if !strings.Contains(out, "synced 2 documents (0 failed)") {
		t.Errorf("unexpected sync output %q", out)
	}

	var view dashboard.View
	if err := json.Unmarshal([]byte(run(t, "dashboard", "--db", db, "--status", "closed", "--json")), &view); err != nil {
		t.Fatal(err)
	}
	if view.Count != 1 || view.Rows[0].Content != "plant bulbs" {
		t.Errorf("unexpected dashboard %+v", view)
	}

	if table := run(t, "dashboard", "--db", db); !strings.Contains(table, "call plumber") || !strings.Contains(table, "2 tasks") {
		t.Errorf("unexpected table output %q", table)
	}
}
