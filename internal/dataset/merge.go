package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/spectrum-dataset/internal/logging"
	"github.com/signalsfoundry/spectrum-dataset/internal/observability"
)

// MergeResult describes a completed merge.
type MergeResult struct {
	Path   string
	Shards int
	Lines  int
}

// MergeShards concatenates every regular file in srcDir whose name starts
// with prefix into destPath, in file name order. Shards are removed only
// after the dataset file has been flushed and closed; any failure leaves
// every shard on disk.
func MergeShards(ctx context.Context, log logging.Logger, srcDir, prefix, destPath string) (res MergeResult, err error) {
	if log == nil {
		log = logging.LoggerFromContext(ctx)
	}
	if log == nil {
		log = logging.Noop()
	}
	ctx, span := observability.StartSpan(ctx, "dataset.merge", attribute.String("destination", destPath))
	defer func() {
		span.SetAttributes(attribute.Int("shards", res.Shards), attribute.Int("lines", res.Lines))
		observability.EndSpan(span, err)
	}()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return res, fmt.Errorf("%w: %w", ErrMergeDestination, err)
	}

	shards, err := findShards(srcDir, prefix)
	if err != nil {
		return res, err
	}
	if len(shards) == 0 {
		return res, fmt.Errorf("%w: prefix %q in %s", ErrNoShards, prefix, srcDir)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return res, fmt.Errorf("create dataset file: %w", err)
	}
	w := bufio.NewWriterSize(out, shardBufferSize)

	for _, shard := range shards {
		n, err := appendShard(w, shard)
		if err != nil {
			_ = out.Close()
			return res, fmt.Errorf("merge shard %s: %w", shard, err)
		}
		res.Lines += n
		res.Shards++
	}
	if err := w.Flush(); err != nil {
		_ = out.Close()
		return res, fmt.Errorf("flush dataset file: %w", err)
	}
	if err := out.Close(); err != nil {
		return res, fmt.Errorf("close dataset file: %w", err)
	}
	res.Path = destPath

	for _, shard := range shards {
		if err := os.Remove(shard); err != nil {
			log.Warn(ctx, "could not remove merged shard", logging.String("path", shard), logging.Err(err))
		}
	}
	return res, nil
}

func findShards(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list shards: %w", err)
	}
	var shards []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		shards = append(shards, filepath.Join(dir, e.Name()))
	}
	sort.Strings(shards)
	return shards, nil
}

// appendShard copies path line by line into w, terminating a final
// unterminated line, and returns the number of lines copied.
func appendShard(w *bufio.Writer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, shardBufferSize)
	lines := 0
	for {
		chunk, err := r.ReadString('\n')
		if len(chunk) > 0 {
			if _, werr := w.WriteString(chunk); werr != nil {
				return lines, werr
			}
			if !strings.HasSuffix(chunk, "\n") {
				if werr := w.WriteByte('\n'); werr != nil {
					return lines, werr
				}
			}
			lines++
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
	}
}
