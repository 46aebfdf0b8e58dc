// Package testsupport holds golden file helpers shared by package tests.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateEnv names the environment variable that rewrites goldens in place.
const UpdateEnv = "UPDATE_GOLDENS"

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv(UpdateEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertJSONGolden marshals got and compares it with the JSON stored at path.
// Both sides are decoded before comparing, so key order and number types do
// not matter.
func AssertJSONGolden(t *testing.T, path string, got any) {
	t.Helper()

	payload, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	if WriteMaybeGolden(t, path, append(payload, '\n')) {
		return
	}

	var want, have any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	if err := json.Unmarshal(payload, &have); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}
