package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/testutil"
)

// fixtureProjects creates a conversations root with one populated project and
// returns the root and the project's id.
func fixtureProjects(t *testing.T) (string, string) {
	t.Helper()

	root := testutil.CreateTempDir(t)
	id := "-Users-reed-dev-demo"
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	testutil.WriteLogFile(t, dir, "conversation.jsonl",
		testutil.UserRecord("u1", "", "2024-01-01T00:00:00Z", "s1", "hello"),
		testutil.AssistantRecord("a1", "u1", "2024-01-01T00:00:05Z", "s1", "hi"),
	)
	return root, id
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	return rootCmd.Execute()
}

func TestListCommand(t *testing.T) {
	root, _ := fixtureProjects(t)
	cache := testutil.CreateTempDir(t)

	if err := runCommand(t, "list", "--projects", root, "--cache-dir", cache); err != nil {
		t.Errorf("list failed: %v", err)
	}
}

func TestListCommand_EmptyRoot(t *testing.T) {
	root := testutil.CreateTempDir(t)
	cache := testutil.CreateTempDir(t)

	if err := runCommand(t, "list", "--projects", root, "--cache-dir", cache); err != nil {
		t.Errorf("list of empty root failed: %v", err)
	}
}

func TestListCommand_MissingRoot(t *testing.T) {
	cache := testutil.CreateTempDir(t)

	if err := runCommand(t, "list", "--projects", "/nonexistent/projects", "--cache-dir", cache); err == nil {
		t.Error("list should fail for a missing conversations root")
	}
}

func TestShowCommand(t *testing.T) {
	root, id := fixtureProjects(t)
	cache := testutil.CreateTempDir(t)

	if err := runCommand(t, "show", id, "--projects", root, "--cache-dir", cache); err != nil {
		t.Errorf("show failed: %v", err)
	}
}

func TestShowCommand_UnknownProject(t *testing.T) {
	root, _ := fixtureProjects(t)
	cache := testutil.CreateTempDir(t)

	if err := runCommand(t, "show", "no-such-project", "--projects", root, "--cache-dir", cache); err == nil {
		t.Error("show should fail for an unknown project")
	}
}

func TestSessionsCommand(t *testing.T) {
	root, id := fixtureProjects(t)
	cache := testutil.CreateTempDir(t)

	if err := runCommand(t, "sessions", id, "--projects", root, "--cache-dir", cache); err != nil {
		t.Errorf("sessions failed: %v", err)
	}
}
