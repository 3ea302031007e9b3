package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathLossCache_RoundTrip(t *testing.T) {
	entries := map[string]float64{
		"0_0_30_10_0_15": 71.25,
		"1_1_30_2_2_15":  -0.5,
	}

	for _, name := range []string{"cache.json", "nested/dir/cache.json.sz"} {
		path := filepath.Join(t.TempDir(), name)
		if err := SavePathLossCache(path, entries); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		got, err := LoadPathLossCache(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if len(got) != len(entries) {
			t.Fatalf("%s: loaded %d entries, want %d", name, len(got), len(entries))
		}
		for k, v := range entries {
			if got[k] != v {
				t.Fatalf("%s: entry %s = %v, want %v", name, k, got[k], v)
			}
		}
		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Fatalf("%s: temporary file left behind", name)
		}
	}
}

func TestPathLossCache_CompressedIsNotPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sz")
	if err := SavePathLossCache(path, map[string]float64{"k": 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) == `{"k":1}` {
		t.Fatalf("compressed cache written as plain JSON")
	}
}

func TestLoadPathLossCache_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadPathLossCache(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadPathLossCache(bad); err == nil {
		t.Fatalf("expected decode error")
	}
	badSz := filepath.Join(dir, "bad.sz")
	if err := os.WriteFile(badSz, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadPathLossCache(badSz); err == nil {
		t.Fatalf("expected decompression error")
	}
}
