package dataset

import (
	"bufio"
	"fmt"
	"os"
)

const shardBufferSize = 64 * 1024

// shardWriter appends records to a worker-private shard file through a
// buffered writer. It is not safe for concurrent use; each worker owns one.
type shardWriter struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// openShard creates (or truncates) the shard at path.
func openShard(path string) (*shardWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &shardWriter{path: path, f: f, w: bufio.NewWriterSize(f, shardBufferSize)}, nil
}

// WriteLine appends one record followed by a newline.
func (s *shardWriter) WriteLine(line string) error {
	if _, err := s.w.WriteString(line); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// Close flushes buffered records and closes the file. The first error wins.
func (s *shardWriter) Close() error {
	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flush shard %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close shard %s: %w", s.path, closeErr)
	}
	return nil
}
