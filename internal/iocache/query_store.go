package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
)

// QueryStore keeps serialized metric group results keyed by query.
type QueryStore struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.CacheStore = &QueryStore{} // Compile-time check

// NewQueryStore opens the query cache table on the given backend.
// The none backend yields a store that never hits and never writes.
func NewQueryStore(tableName string, backend schema.DatabaseBackend, connStr string) (*QueryStore, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	store := &QueryStore{tableName: tableName, backend: backend, connStr: connStr}
	if backend == schema.NoneBackend {
		return store, nil
	}

	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createQueryTableSQL(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	store.db = db
	return store, nil
}

// createQueryTableSQL returns the CREATE TABLE query for the given backend.
func createQueryTableSQL(tableName string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			cache_key VARCHAR(64) PRIMARY KEY,
			cache_value LONGBLOB NOT NULL,
			cache_version INT NOT NULL,
			cache_timestamp BIGINT NOT NULL
		)`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			cache_key TEXT PRIMARY KEY,
			cache_value BYTEA NOT NULL,
			cache_version INTEGER NOT NULL,
			cache_timestamp BIGINT NOT NULL
		)`, quoted)
	default: // SQLite
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			cache_key TEXT PRIMARY KEY,
			cache_value BLOB NOT NULL,
			cache_version INTEGER NOT NULL,
			cache_timestamp INTEGER NOT NULL
		)`, quoted)
	}
}

// Get retrieves a value by key from the store.
// A miss is reported as sql.ErrNoRows.
func (qs *QueryStore) Get(key string) ([]byte, int, int64, error) {
	if qs.db == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	var value []byte
	var version int
	var ts int64
	query := fmt.Sprintf(`SELECT cache_value, cache_version, cache_timestamp FROM %s WHERE cache_key = %s`,
		quoteTableName(qs.tableName, qs.backend), placeholders(qs.backend, 1))
	if err := qs.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces a key/value pair in the store.
func (qs *QueryStore) Set(key string, value []byte, version int, timestamp int64) error {
	if qs.db == nil {
		return nil
	}
	_, err := qs.db.Exec(qs.upsertSQL(), key, value, version, timestamp)
	return err
}

// upsertSQL returns the backend-specific UPSERT query.
func (qs *QueryStore) upsertSQL() string {
	quoted := quoteTableName(qs.tableName, qs.backend)
	switch qs.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_version = new.cache_version, cache_timestamp = new.cache_timestamp`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp`, quoted)
	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?)`, quoted)
	}
}

// Close closes the underlying DB connection.
func (qs *QueryStore) Close() error {
	if qs.db != nil {
		return qs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the cache store.
func (qs *QueryStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(qs.backend),
		Connected: qs.db != nil,
	}
	if qs.db == nil {
		return status, nil
	}

	quoted := quoteTableName(qs.tableName, qs.backend)
	var lastTs, oldestTs sql.NullInt64
	row := qs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), MAX(cache_timestamp), MIN(cache_timestamp) FROM %s", quoted))
	if err := row.Scan(&status.TotalEntries, &lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get cache entry stats: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}
	status.LastEntryTime = time.Unix(lastTs.Int64, 0)
	status.OldestEntryTime = time.Unix(oldestTs.Int64, 0)
	status.TableSizeBytes = qs.tableSize()
	return status, nil
}

// tableSize estimates the on-disk size of the cache table.
func (qs *QueryStore) tableSize() int64 {
	var size int64
	switch qs.backend {
	case schema.SQLiteBackend:
		row := qs.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(qs.connStr)
		if err != nil || cfg.DBName == "" {
			return 0
		}
		row := qs.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", cfg.DBName, qs.tableName)
		if err := row.Scan(&size); err != nil {
			return 0
		}
	case schema.PostgreSQLBackend:
		row := qs.db.QueryRow("SELECT pg_total_relation_size($1)", qs.tableName)
		if err := row.Scan(&size); err != nil {
			return 0
		}
	}
	return size
}
