package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckExecutableExists(t *testing.T) {
	// Common executables that should exist on most systems
	commonExecutables := []string{"sh", "bash"}

	nonExistentExecutables := []string{
		"this-executable-does-not-exist-12345",
		"another-non-existent-executable-67890",
	}

	foundCommon := false
	for _, exe := range commonExecutables {
		if CheckExecutableExists(exe) {
			foundCommon = true
			break
		}
	}

	if !foundCommon {
		t.Errorf("None of the common executables %v were found, at least one should exist", commonExecutables)
	}

	for _, exe := range nonExistentExecutables {
		if CheckExecutableExists(exe) {
			t.Errorf("Non-existent executable %q was reported as existing", exe)
		}
	}
}

func TestFindExecutableRelativePath(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "run.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	// relative $PATH entries are honoured like execvp does
	chdir(t, dir)
	t.Setenv("PATH", ".")

	path, err := FindExecutable("run.sh")
	if err != nil {
		t.Fatalf("FindExecutable() error = %v", err)
	}
	if filepath.Base(path) != "run.sh" {
		t.Errorf("FindExecutable() = %q, want a path to run.sh", path)
	}

	if _, err := FindExecutable("./missing.sh"); err == nil {
		t.Error("FindExecutable() should fail for a missing explicit path")
	}
}
