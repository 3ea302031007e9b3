package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
)

// compressedCacheSuffix marks a snappy-compressed cache file.
const compressedCacheSuffix = ".sz"

// LoadPathLossCache reads a JSON map of terrain keys to losses. Files ending
// in ".sz" are snappy-decoded first.
func LoadPathLossCache(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read path loss cache: %w", err)
	}
	if strings.HasSuffix(path, compressedCacheSuffix) {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("decompress path loss cache: %w", err)
		}
	}

	entries := make(map[string]float64)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode path loss cache: %w", err)
	}
	return entries, nil
}

// SavePathLossCache writes entries as JSON, snappy-compressed when path ends
// in ".sz". The file is written to a temporary sibling and renamed into place.
func SavePathLossCache(path string, entries map[string]float64) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode path loss cache: %w", err)
	}
	if strings.HasSuffix(path, compressedCacheSuffix) {
		data = snappy.Encode(nil, data)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write path loss cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("install path loss cache: %w", err)
	}
	return nil
}
