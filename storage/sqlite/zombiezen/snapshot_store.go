package zombiezen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/storage"
)

// SnapshotStore keeps snapshots in SQLite. Documents are stored as msgpack
// blobs in partition order.
type SnapshotStore struct {
	pool *sqlitex.Pool
}

var _ storage.SnapshotRepository = (*SnapshotStore)(nil)

func NewSnapshotStore(pool *sqlitex.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

func (h *SnapshotStore) Close() error {
	return h.pool.Close()
}

func (h *SnapshotStore) List() ([]storage.SnapshotInfo, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	infos := []storage.SnapshotInfo{}
	err = sqlitex.Execute(conn, "SELECT id, name, created FROM snapshots ORDER BY name", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			info, err := scanInfo(stmt)
			if err != nil {
				return err
			}
			infos = append(infos, info)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	for i := range infos {
		if infos[i].Counts, err = counts(conn, infos[i].ID); err != nil {
			return nil, err
		}
	}

	return infos, nil
}

func (h *SnapshotStore) Read(name string) (storage.SnapshotInfo, absa.Corpus, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return storage.SnapshotInfo{}, absa.Corpus{}, err
	}
	defer h.pool.Put(conn)

	var info storage.SnapshotInfo
	found := false
	err = sqlitex.Execute(conn, "SELECT id, name, created FROM snapshots WHERE name = ? LIMIT 1", &sqlitex.ExecOptions{
		Args: []interface{}{name},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			info, err = scanInfo(stmt)
			return err
		},
	})
	if err != nil {
		return storage.SnapshotInfo{}, absa.Corpus{}, err
	}
	if !found {
		return storage.SnapshotInfo{}, absa.Corpus{}, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
	}

	if info.Counts, err = counts(conn, info.ID); err != nil {
		return storage.SnapshotInfo{}, absa.Corpus{}, err
	}

	var c absa.Corpus
	for _, partition := range absa.PartitionNames() {
		if _, ok := info.Counts[partition]; !ok {
			continue
		}

		docs := make([]absa.Document, 0, info.Counts[partition])
		err = sqlitex.Execute(conn, "SELECT data FROM documents WHERE snapshot_id = ? AND part = ? ORDER BY position", &sqlitex.ExecOptions{
			Args: []interface{}{info.ID.String(), partition},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				data := make([]byte, stmt.ColumnLen(0))
				stmt.ColumnBytes(0, data)

				var doc absa.Document
				if err := msgpack.Unmarshal(data, &doc); err != nil {
					return fmt.Errorf("msgpack decoding error: %w", err)
				}
				docs = append(docs, doc)
				return nil
			},
		})
		if err != nil {
			return storage.SnapshotInfo{}, absa.Corpus{}, err
		}
		c = c.With(partition, absa.Present(docs))
	}

	return info, c, nil
}

func (h *SnapshotStore) Write(name string, c absa.Corpus, progress storage.Progress) (info storage.SnapshotInfo, err error) {
	if err := storage.ValidateName(name); err != nil {
		return storage.SnapshotInfo{}, err
	}

	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return storage.SnapshotInfo{}, err
	}
	defer h.pool.Put(conn)

	// Start Transaction
	defer sqlitex.Save(conn)(&err)

	if err = deleteSnapshot(conn, name); err != nil {
		return storage.SnapshotInfo{}, err
	}

	info = storage.NewInfo(name, c)
	id := info.ID.String()

	err = sqlitex.Execute(conn, "INSERT INTO snapshots (id, name, created) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
		Args: []interface{}{id, name, info.Created.Format(time.RFC3339Nano)},
	})
	if err != nil {
		return storage.SnapshotInfo{}, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	total := storage.Total(c)
	current := 0
	for _, partition := range absa.PartitionNames() {
		part := c.Get(partition)
		if !part.IsPresent() {
			continue
		}

		err = sqlitex.Execute(conn, "INSERT INTO partitions (snapshot_id, name) VALUES (?, ?)", &sqlitex.ExecOptions{
			Args: []interface{}{id, partition},
		})
		if err != nil {
			return storage.SnapshotInfo{}, fmt.Errorf("failed to insert partition: %w", err)
		}

		for pos, doc := range part.Items() {
			data, marshalErr := msgpack.Marshal(doc)
			if marshalErr != nil {
				err = marshalErr
				return storage.SnapshotInfo{}, err
			}

			err = sqlitex.Execute(conn, "INSERT INTO documents (snapshot_id, part, position, data) VALUES (?, ?, ?, ?)", &sqlitex.ExecOptions{
				Args: []interface{}{id, partition, pos, data},
			})
			if err != nil {
				return storage.SnapshotInfo{}, fmt.Errorf("failed to insert document: %w", err)
			}

			current++
			if progress != nil {
				progress(current, total, partition)
			}
		}
	}

	return info, nil
}

func deleteSnapshot(conn *sqlite.Conn, name string) error {
	for _, query := range []string{
		"DELETE FROM documents WHERE snapshot_id IN (SELECT id FROM snapshots WHERE name = ?)",
		"DELETE FROM partitions WHERE snapshot_id IN (SELECT id FROM snapshots WHERE name = ?)",
		"DELETE FROM snapshots WHERE name = ?",
	} {
		if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: []interface{}{name}}); err != nil {
			return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
		}
	}
	return nil
}

// counts returns the number of documents of each partition of the snapshot,
// present partitions only.
func counts(conn *sqlite.Conn, id uuid.UUID) (map[string]int, error) {
	counts := map[string]int{}
	err := sqlitex.Execute(conn, `
		SELECT p.name, (SELECT COUNT(*) FROM documents d WHERE d.snapshot_id = p.snapshot_id AND d.part = p.name)
		FROM partitions p
		WHERE p.snapshot_id = ?
	`, &sqlitex.ExecOptions{
		Args: []interface{}{id.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			counts[stmt.ColumnText(0)] = stmt.ColumnInt(1)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func scanInfo(stmt *sqlite.Stmt) (storage.SnapshotInfo, error) {
	id, err := uuid.Parse(stmt.ColumnText(0))
	if err != nil {
		return storage.SnapshotInfo{}, fmt.Errorf("snapshot id: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, stmt.ColumnText(2))
	if err != nil {
		return storage.SnapshotInfo{}, fmt.Errorf("snapshot created: %w", err)
	}
	return storage.SnapshotInfo{
		ID:      id,
		Name:    stmt.ColumnText(1),
		Created: created,
	}, nil
}
