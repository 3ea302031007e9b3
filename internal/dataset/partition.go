package dataset

import "fmt"

// Partition splits total samples across workers: every worker gets
// total/workers and worker 0 additionally takes the remainder. The shares
// always sum to total.
func Partition(total, workers int) ([]int, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: worker count must be positive, got %d", ErrSetup, workers)
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: sample count must not be negative, got %d", ErrSetup, total)
	}
	shares := make([]int, workers)
	base := total / workers
	for i := range shares {
		shares[i] = base
	}
	shares[0] += total - base*workers
	return shares, nil
}
