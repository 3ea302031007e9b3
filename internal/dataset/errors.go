package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrSetup marks failures that prevent a run or a worker from starting:
	// invalid configuration, an output directory that cannot be created or a
	// shard file that cannot be opened.
	ErrSetup = errors.New("dataset: setup failed")

	// ErrShardIO marks a shard write or flush failure. The affected worker
	// stops; other workers keep running.
	ErrShardIO = errors.New("dataset: shard i/o failed")

	// ErrNoShards is returned by MergeShards when nothing matches the run's
	// shard prefix. The orchestrator logs it as a warning.
	ErrNoShards = errors.New("dataset: no shard files to merge")

	// ErrMergeDestination is returned by MergeShards when the destination
	// directory cannot be created. Shards stay on disk.
	ErrMergeDestination = errors.New("dataset: merge destination unavailable")

	// ErrSamplePanic wraps a panic recovered while building one sample.
	ErrSamplePanic = errors.New("dataset: sample panicked")
)

// SampleError is a recoverable failure of a single sample. The worker logs
// it, counts it and moves on to the next sample.
type SampleError struct {
	Worker int
	Sample int
	Err    error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("worker %d sample %d: %v", e.Worker, e.Sample, e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }
