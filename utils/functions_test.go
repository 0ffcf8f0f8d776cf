package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseHeaderArgs(t *testing.T) {
	headers := ParseHeaderArgs([]string{
		"Authorization: Basic dXNlcjpwYXNz",
		"X-Custom:value",
		"malformed-no-colon",
		"Spaced :  padded value ",
	})
	if got := headers["Authorization"]; got != "Basic dXNlcjpwYXNz" {
		t.Errorf("Authorization = %q", got)
	}
	if got := headers["X-Custom"]; got != "value" {
		t.Errorf("X-Custom = %q", got)
	}
	if got := headers["Spaced"]; got != "padded value" {
		t.Errorf("Spaced = %q", got)
	}
	if len(headers) != 3 {
		t.Errorf("got %d headers, want 3 (malformed entry dropped)", len(headers))
	}
}

func TestRenewOutputPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.tar.gz")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	renewed := RenewOutputPath(path)
	if renewed != filepath.Join(dir, "file.tar-(1).gz") {
		t.Errorf("renewed = %q", renewed)
	}
	if err := os.WriteFile(renewed, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if again := RenewOutputPath(path); again != filepath.Join(dir, "file.tar-(2).gz") {
		t.Errorf("second renewal = %q", again)
	}
}

func TestTempDir(t *testing.T) {
	if got := TempDir(filepath.Join("downloads", "file.bin")); got != filepath.Join("downloads", TempDirName) {
		t.Errorf("TempDir = %q", got)
	}
}

func TestPartFileRegex(t *testing.T) {
	matches := PartFileRegex.FindStringSubmatch("file.bin.part3_3000-3999")
	if len(matches) != 4 || matches[1] != "3" || matches[2] != "3000" || matches[3] != "3999" {
		t.Errorf("matches = %v", matches)
	}
	if PartFileRegex.MatchString("file.bin.part3") {
		t.Error("regex matched a name without range bounds")
	}
}
