package main

import (
	"bytes"
	"io"
	"os"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestAccountCmdRegistersSubcommands(t *testing.T) {
	cmd := accountCmd()

	expected := map[string]bool{"create": false, "get": false, "metrics": false, "entries": false}
	for _, sub := range cmd.Commands() {
		expected[sub.Name()] = true
	}

	for name, found := range expected {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestPostCmdRegistersSubcommands(t *testing.T) {
	cmd := postCmd()

	expected := map[string]bool{"purchase": false, "fee": false, "repayment": false}
	for _, sub := range cmd.Commands() {
		expected[sub.Name()] = true
	}

	for name, found := range expected {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestMigrateCmdRegistersSubcommands(t *testing.T) {
	cmd := migrateCmd()

	expected := map[string]bool{"up": false, "down": false}
	for _, sub := range cmd.Commands() {
		expected[sub.Name()] = true
	}

	for name, found := range expected {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}
