package seed

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/bizlens/bizlens/internal/storage"
)

const parquetContentType = "application/vnd.apache.parquet"

// Publish uploads every encoded table snapshot under the dataset prefix and
// returns the written objects in table name order.
func Publish(ctx context.Context, store storage.ObjectStore, dataset string, files ParquetFiles) ([]storage.ObjectInfo, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no parquet files to publish")
	}

	tables := make([]string, 0, len(files))
	for table := range files {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	written := make([]storage.ObjectInfo, 0, len(tables))
	for _, table := range tables {
		key, err := storage.BuildTablePath(dataset, table)
		if err != nil {
			return nil, err
		}
		data := files[table]
		info, err := store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{ContentType: parquetContentType})
		if err != nil {
			return nil, fmt.Errorf("put %s: %w", key, err)
		}
		written = append(written, info)
	}
	return written, nil
}
