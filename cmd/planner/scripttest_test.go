//go:build scripttests
// +build scripttests

package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"rsc.io/script"
	"rsc.io/script/scripttest"
)

// TestScripts runs end-to-end operation-sequence scenarios against the real
// planner binary in direct (in-process store) mode: each testdata/*.txt
// script drives a sequence of `planner op`/`planner query` invocations
// against a scratch sqlite file and asserts on their stdout.
func TestScripts(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("scripttest uses Unix shell commands (sh -c), skipping on Windows")
	}

	exeName := "planner"
	binDir := t.TempDir()
	exe := filepath.Join(binDir, exeName)
	if err := exec.Command("go", "build", "-o", exe, ".").Run(); err != nil {
		t.Fatal(err)
	}

	timeout := 5 * time.Second
	engine := script.NewEngine()
	engine.Cmds["planner"] = script.Program(exe, nil, timeout)

	currentPath := os.Getenv("PATH")
	env := []string{"PATH=" + binDir + ":" + currentPath}

	scripttest.Test(t, context.Background(), engine, env, "testdata/*.txt")
}
