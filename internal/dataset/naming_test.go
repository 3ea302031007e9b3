package dataset

import (
	"sort"
	"testing"
	"time"
)

func TestShardName(t *testing.T) {
	if got := ShardName("localization", "abc", 7); got != "localization_abc_0007.txt" {
		t.Fatalf("ShardName = %q", got)
	}
	if got := ShardName("", "abc", 0); got != "localization_abc_0000.txt" {
		t.Fatalf("ShardName with default prefix = %q", got)
	}
}

func TestShardNamesSortInWorkerOrder(t *testing.T) {
	var names []string
	for i := 12; i >= 0; i-- {
		names = append(names, ShardName("p", "run", i))
	}
	sort.Strings(names)
	for i, n := range names {
		if n != ShardName("p", "run", i) {
			t.Fatalf("position %d holds %q", i, n)
		}
	}
}

func TestDatasetFileName(t *testing.T) {
	at := time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)

	ranged := DatasetName{
		Samples: 1000, MinTX: 1, MaxTX: 5, Sensors: 100,
		Shape: "square100", ModelDescriptor: "log_alpha3.0_noisy_std1.0", CreatedAt: at,
	}
	if got, want := ranged.FileName(), "1000_min1_max5TXs_100sensor_square100grid_log_alpha3.0_noisy_std1.0_2024_03_05_14_07.txt"; got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}

	fixed := ranged
	fixed.MinTX, fixed.MaxTX = 3, 3
	fixed.ModelDescriptor = "terrain"
	if got, want := fixed.FileName(), "1000_3TXs_100sensor_square100grid_terrain_2024_03_05_14_07.txt"; got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}
}
