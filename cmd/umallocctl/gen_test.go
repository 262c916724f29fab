package main

import (
	"strings"
	"testing"
)

func TestGenCommand(t *testing.T) {
	resetFlags()
	genOps = 5
	genSeed = 3
	genMaxSize = 64

	output, err := captureOutput(t, runGen)
	if err != nil {
		t.Fatalf("runGen() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected header plus 10 operations, got %d lines:\n%s", len(lines), output)
	}
	assertContains(t, lines[0], []string{"# umallocctl gen", "--ops 5", "--seed 3", "--max-size 64"})
	if !strings.HasPrefix(lines[1], "a 0 ") {
		t.Errorf("first operation should allocate id 0, got %q", lines[1])
	}

	again, _ := captureOutput(t, runGen)
	if again != output {
		t.Error("same seed produced a different trace")
	}
}

func TestGenCommand_InvalidFlags(t *testing.T) {
	resetFlags()
	genOps = 0
	if err := runGen(); err == nil {
		t.Error("expected error for zero ops")
	}

	resetFlags()
	genMaxSize = 0
	if err := runGen(); err == nil {
		t.Error("expected error for zero max size")
	}
}
