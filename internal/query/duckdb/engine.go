package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/bizlens/bizlens/internal/query"
	"github.com/bizlens/bizlens/internal/storage"
)

// TableFile maps a warehouse table to the Parquet object holding its rows.
type TableFile struct {
	TableName  string
	ObjectPath string
}

// Executor answers statements with an in-process DuckDB over Parquet
// snapshots of the warehouse tables kept in an object store. Every call
// works on a fresh database in a private temp dir.
type Executor struct {
	Store  storage.ObjectStore
	Tables []TableFile
}

func NewExecutor(store storage.ObjectStore, tables []TableFile) *Executor {
	return &Executor{Store: store, Tables: tables}
}

// DatasetTables returns the object layout written by the seed publisher.
func DatasetTables(dataset string, tableNames ...string) ([]TableFile, error) {
	files := make([]TableFile, 0, len(tableNames))
	for _, name := range tableNames {
		objectPath, err := storage.BuildTablePath(dataset, name)
		if err != nil {
			return nil, err
		}
		files = append(files, TableFile{TableName: name, ObjectPath: objectPath})
	}
	return files, nil
}

func (e *Executor) Query(ctx context.Context, sqlText string) ([]query.Row, error) {
	if strings.TrimSpace(sqlText) == "" {
		return nil, fmt.Errorf("sql is required")
	}
	if len(e.Tables) == 0 {
		return nil, fmt.Errorf("no warehouse tables configured")
	}
	if e.Store == nil {
		return nil, fmt.Errorf("object store is required")
	}

	workDir, err := os.MkdirTemp("", "bizlens-query-")
	if err != nil {
		return nil, fmt.Errorf("create query temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	localPaths := make(map[string]string, len(e.Tables))
	for _, table := range e.Tables {
		reader, err := e.Store.Get(ctx, table.ObjectPath)
		if err != nil {
			return nil, fmt.Errorf("get object %q: %w", table.ObjectPath, err)
		}
		localPath := filepath.Join(workDir, sanitizeFileComponent(table.TableName)+".parquet")
		if err := copyToFile(localPath, reader); err != nil {
			_ = reader.Close()
			return nil, fmt.Errorf("write local parquet file %q: %w", localPath, err)
		}
		if err := reader.Close(); err != nil {
			return nil, fmt.Errorf("close object %q: %w", table.ObjectPath, err)
		}
		localPaths[table.TableName] = localPath
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }()

	for tableName, localPath := range localPaths {
		viewSQL := fmt.Sprintf(`CREATE OR REPLACE VIEW %s AS SELECT * FROM read_parquet(%s)`, quoteIdent(tableName), quoteString(localPath))
		if _, err := db.ExecContext(ctx, viewSQL); err != nil {
			return nil, fmt.Errorf("create view for table %q: %w", tableName, err)
		}
	}

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, &query.DBError{Message: err.Error(), Err: err}
	}
	defer func() { _ = rows.Close() }()

	result, err := query.ScanRows(rows)
	if err != nil {
		return nil, &query.DBError{Message: err.Error(), Err: err}
	}
	return result, nil
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func quoteString(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}

func sanitizeFileComponent(value string) string {
	value = strings.ReplaceAll(value, "/", "_")
	value = strings.ReplaceAll(value, "..", "_")
	if value == "" {
		return "table"
	}
	return value
}

func copyToFile(path string, reader io.Reader) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
