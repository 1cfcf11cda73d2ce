package zombiezen

import (
	"fmt"
	"runtime"

	"zombiezen.com/go/sqlite/sqlitex"
)

// NewPool creates a connection pool on the database file at dbPath. The
// default pool flags open the file read-write in WAL mode, creating it if
// needed.
func NewPool(dbPath string) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:%s", dbPath), sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create zombiezen pool at %s: %w", dbPath, err)
	}
	return pool, nil
}

// Open returns a snapshot store on the database file at dbPath, creating
// the tables if needed. Close releases the pool.
func Open(dbPath string) (*SnapshotStore, error) {
	pool, err := NewPool(dbPath)
	if err != nil {
		return nil, err
	}

	if err := CreateSchemas(pool, snapshotsSchema); err != nil {
		pool.Close()
		return nil, err
	}

	return NewSnapshotStore(pool), nil
}
