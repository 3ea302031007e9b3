package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// DefaultShardPrefix is the file name prefix of worker shards.
const DefaultShardPrefix = "localization"

// datasetTimestampLayout renders as yyyy_MM_dd_HH_mm.
const datasetTimestampLayout = "2006_01_02_15_04"

// ShardName returns the file name of worker index's shard. The zero-padded
// index keeps lexical order equal to worker order for up to 10000 workers.
func ShardName(prefix, runID string, index int) string {
	return fmt.Sprintf("%s_%04d.txt", shardPrefix(prefix, runID), index)
}

// shardPrefix is the common file name prefix of every shard of one run.
func shardPrefix(prefix, runID string) string {
	if prefix == "" {
		prefix = DefaultShardPrefix
	}
	return prefix + "_" + runID
}

// DatasetName describes a finished run for naming its merged dataset file.
type DatasetName struct {
	Samples         int
	MinTX           int
	MaxTX           int
	Sensors         int
	Shape           string
	ModelDescriptor string
	CreatedAt       time.Time
}

// FileName renders
//
//	<samples>_<txs>TXs_<sensors>sensor_<shape>grid_<model>_<yyyy_MM_dd_HH_mm>.txt
//
// where <txs> is "min<a>_max<b>", or just the count when both bounds agree.
func (n DatasetName) FileName() string {
	txs := strconv.Itoa(n.MaxTX)
	if n.MinTX != n.MaxTX {
		txs = fmt.Sprintf("min%d_max%d", n.MinTX, n.MaxTX)
	}
	return fmt.Sprintf("%d_%sTXs_%dsensor_%sgrid_%s_%s.txt",
		n.Samples, txs, n.Sensors, n.Shape, n.ModelDescriptor,
		n.CreatedAt.Format(datasetTimestampLayout))
}
