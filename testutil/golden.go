// Package testutil provides golden-file comparison helpers used to pin
// down the deterministic byte-for-byte output promised by §8.2: for a
// fixed source closure, variant selection, args, format and tool
// version, compile+emit must produce identical bytes across runs.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// UpdateGoldens controls whether mismatches are written back to disk
// instead of failing the test. Set via UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenPath returns the on-disk path of a golden fixture.
func GoldenPath(feature, name, ext string) string {
	return filepath.Join("testdata", feature, name+".golden."+ext)
}

// CompareBytes compares actual against the golden fixture at
// testdata/<feature>/<name>.golden.<ext>, byte for byte. With
// UPDATE_GOLDENS=true it writes actual to that path instead of comparing.
func CompareBytes(t *testing.T, feature, name, ext string, actual []byte) {
	t.Helper()
	path := GoldenPath(feature, name, ext)

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create golden dir: %v", err)
		}
		if err := os.WriteFile(path, actual, 0o644); err != nil {
			t.Fatalf("write golden file: %v", err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s (run with UPDATE_GOLDENS=true to create)", path)
		}
		t.Fatalf("read golden file: %v", err)
	}
	if string(expected) != string(actual) {
		t.Errorf("golden mismatch for %s/%s\nexpected:\n%s\nactual:\n%s", feature, name, expected, actual)
	}
}

// AssertGoldenJSON is CompareBytes specialized for JSON, normalizing
// insignificant whitespace differences before comparing so the fixture
// doesn't need to track the emitter's exact indentation style.
func AssertGoldenJSON(t *testing.T, feature, name string, actualJSON []byte) {
	t.Helper()
	path := GoldenPath(feature, name, "json")

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create golden dir: %v", err)
		}
		if err := os.WriteFile(path, actualJSON, 0o644); err != nil {
			t.Fatalf("write golden file: %v", err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s (run with UPDATE_GOLDENS=true to create)", path)
		}
		t.Fatalf("read golden file: %v", err)
	}
	if !jsonEqual(expected, actualJSON) {
		t.Errorf("golden JSON mismatch for %s/%s\nexpected:\n%s\nactual:\n%s", feature, name, expected, actualJSON)
	}
}

func jsonEqual(a, b []byte) bool {
	var av, bv interface{}
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	aj, _ := json.Marshal(av)
	bj, _ := json.Marshal(bv)
	return string(aj) == string(bj)
}
