package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, file := range files {
		fullPath := filepath.Join(root, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("// spec"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}
}

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()

	writeTree(t, tmpDir, []string{
		"conformance/objects.spec.js",
		"conformance/grammar/numbers.spec.yaml",
		"conformance/grammar/strings.spec.yml",
		"conformance/helpers.js",
		"conformance/.cache/stale.spec.js",
		"node_modules/pkg/index.spec.js",
		"vendor/x.spec.js",
	})

	scanner := NewScanner([]string{"vendor", "node_modules"})

	t.Run("scans spec sources correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{
			filepath.Join(tmpDir, "conformance/grammar/numbers.spec.yaml"),
			filepath.Join(tmpDir, "conformance/grammar/strings.spec.yml"),
			filepath.Join(tmpDir, "conformance/objects.spec.js"),
		}
		if len(results) != len(want) {
			t.Fatalf("expected %d sources, got %d: %v", len(want), len(results), results)
		}
		for i := range want {
			if results[i] != want[i] {
				t.Errorf("result %d: expected %s, got %s", i, want[i], results[i])
			}
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "conformance/objects.spec.js"))
		if err == nil {
			t.Error("expected error for file path")
		}
	})
}

func TestScanner_Resolve(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{
		"a.spec.js",
		"b.spec.yaml",
		"sub/c.spec.js",
		"notes.txt",
	})
	scanner := NewScanner(nil)

	t.Run("file, directory and glob", func(t *testing.T) {
		results, err := scanner.Resolve([]string{
			filepath.Join(tmpDir, "sub"),
			filepath.Join(tmpDir, "*.spec.*"),
			filepath.Join(tmpDir, "a.spec.js"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{
			filepath.Join(tmpDir, "sub/c.spec.js"),
			filepath.Join(tmpDir, "a.spec.js"),
			filepath.Join(tmpDir, "b.spec.yaml"),
		}
		if len(results) != len(want) {
			t.Fatalf("expected %v, got %v", want, results)
		}
		for i := range want {
			if results[i] != want[i] {
				t.Errorf("result %d: expected %s, got %s", i, want[i], results[i])
			}
		}
	})

	t.Run("glob skips non-sources", func(t *testing.T) {
		results, err := scanner.Resolve([]string{filepath.Join(tmpDir, "*")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Errorf("expected 3 sources, got %v", results)
		}
	})

	t.Run("explicit non-source file is an error", func(t *testing.T) {
		if _, err := scanner.Resolve([]string{filepath.Join(tmpDir, "notes.txt")}); err == nil {
			t.Error("expected error for non-source file")
		}
	})

	t.Run("glob without matches is an error", func(t *testing.T) {
		if _, err := scanner.Resolve([]string{filepath.Join(tmpDir, "*.spec.ts")}); err == nil {
			t.Error("expected error for empty glob")
		}
	})
}
