package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/revelaction/absaset/absa"
)

var (
	// ErrNotFound is returned when no snapshot has the requested name.
	ErrNotFound = errors.New("snapshot not found")

	ErrInvalidName = errors.New("invalid snapshot name")
)

// SnapshotInfo describes a stored canonical corpus.
type SnapshotInfo struct {
	Name    string    `json:"name"`
	ID      uuid.UUID `json:"id"`
	Created time.Time `json:"created"`

	// Counts holds the number of documents of each present partition
	Counts map[string]int `json:"counts"`
}

// Progress is called after each stored document.
type Progress func(current, total int, partition string)

// SnapshotReader defines read operations for snapshot storage
type SnapshotReader interface {
	// List returns the stored snapshots sorted by name. Documents are not
	// loaded.
	List() ([]SnapshotInfo, error)

	// Read returns a snapshot by name. Partitions absent when the snapshot
	// was written are absent.
	Read(name string) (SnapshotInfo, absa.Corpus, error)
}

// SnapshotWriter defines write operations for snapshot storage
type SnapshotWriter interface {
	// Write persists the corpus under name, replacing any snapshot of the
	// same name. progress may be nil.
	Write(name string, c absa.Corpus, progress Progress) (SnapshotInfo, error)
}

// SnapshotRepository combines read and write operations
type SnapshotRepository interface {
	SnapshotReader
	SnapshotWriter
}

// NewInfo returns the info of a new snapshot of c.
func NewInfo(name string, c absa.Corpus) SnapshotInfo {
	return SnapshotInfo{
		Name:    name,
		ID:      uuid.New(),
		Created: time.Now().UTC(),
		Counts:  Counts(c),
	}
}

// Counts returns the number of documents of each present partition.
func Counts(c absa.Corpus) map[string]int {
	counts := map[string]int{}
	c.Each(func(name string, docs []absa.Document) {
		counts[name] = len(docs)
	})
	return counts
}

// Total returns the number of documents of the corpus.
func Total(c absa.Corpus) int {
	n := 0
	for _, v := range Counts(c) {
		n += v
	}
	return n
}

// ValidateName rejects names that can not be used as a directory name.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
