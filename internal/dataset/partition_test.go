package dataset

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPartition_RemainderGoesToFirstWorker(t *testing.T) {
	shares, err := Partition(10, 3)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	want := []int{4, 3, 3}
	for i := range want {
		if shares[i] != want[i] {
			t.Fatalf("shares = %v, want %v", shares, want)
		}
	}
}

func TestPartition_MoreWorkersThanSamples(t *testing.T) {
	shares, err := Partition(2, 5)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if shares[0] != 2 {
		t.Fatalf("worker 0 share = %d, want 2", shares[0])
	}
	for i, s := range shares[1:] {
		if s != 0 {
			t.Fatalf("worker %d share = %d, want 0", i+1, s)
		}
	}
}

func TestPartition_InvalidInput(t *testing.T) {
	if _, err := Partition(10, 0); !errors.Is(err, ErrSetup) {
		t.Fatalf("zero workers: got %v, want ErrSetup", err)
	}
	if _, err := Partition(-1, 2); !errors.Is(err, ErrSetup) {
		t.Fatalf("negative samples: got %v, want ErrSetup", err)
	}
}

func TestPartitionProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("shares sum to the total", prop.ForAll(
		func(total, workers int) bool {
			shares, err := Partition(total, workers)
			if err != nil || len(shares) != workers {
				return false
			}
			sum := 0
			for _, s := range shares {
				sum += s
			}
			return sum == total
		},
		gen.IntRange(0, 100000),
		gen.IntRange(1, 64),
	))

	properties.Property("only worker 0 takes the remainder", prop.ForAll(
		func(total, workers int) bool {
			shares, err := Partition(total, workers)
			if err != nil {
				return false
			}
			base := total / workers
			if shares[0] != base+total%workers {
				return false
			}
			for _, s := range shares[1:] {
				if s != base {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100000),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}
