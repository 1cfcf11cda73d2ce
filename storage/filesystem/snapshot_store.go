package filesystem

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/storage"
)

const metaFile = "meta.json"

// SnapshotStore keeps each snapshot in a directory of its own under root:
// a meta.json file and one JSON file per present partition.
type SnapshotStore struct {
	root string
}

var _ storage.SnapshotRepository = (*SnapshotStore)(nil)

func NewSnapshotStore(root string) *SnapshotStore {
	return &SnapshotStore{root: root}
}

func (s *SnapshotStore) List() ([]storage.SnapshotInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []storage.SnapshotInfo{}, nil
		}
		return nil, err
	}

	infos := []storage.SnapshotInfo{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		info, err := s.info(e.Name())
		if errors.Is(err, storage.ErrNotFound) {
			// not a snapshot
			continue
		}
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *SnapshotStore) info(name string) (storage.SnapshotInfo, error) {
	content, err := os.ReadFile(filepath.Join(s.root, name, metaFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.SnapshotInfo{}, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
		}
		return storage.SnapshotInfo{}, err
	}

	var info storage.SnapshotInfo
	if err := json.Unmarshal(content, &info); err != nil {
		return storage.SnapshotInfo{}, fmt.Errorf("JSON decoding error in %s: %w", name, err)
	}
	return info, nil
}

func (s *SnapshotStore) Read(name string) (storage.SnapshotInfo, absa.Corpus, error) {
	if err := storage.ValidateName(name); err != nil {
		return storage.SnapshotInfo{}, absa.Corpus{}, err
	}

	info, err := s.info(name)
	if err != nil {
		return storage.SnapshotInfo{}, absa.Corpus{}, err
	}

	var c absa.Corpus
	for _, partition := range absa.PartitionNames() {
		content, err := os.ReadFile(filepath.Join(s.root, name, partition+".json"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return storage.SnapshotInfo{}, absa.Corpus{}, err
		}

		docs := []absa.Document{}
		if err := json.Unmarshal(content, &docs); err != nil {
			return storage.SnapshotInfo{}, absa.Corpus{}, fmt.Errorf("JSON decoding error in %s %s: %w", name, partition, err)
		}
		c = c.With(partition, absa.Present(docs))
	}

	return info, c, nil
}

func (s *SnapshotStore) Write(name string, c absa.Corpus, progress storage.Progress) (storage.SnapshotInfo, error) {
	if err := storage.ValidateName(name); err != nil {
		return storage.SnapshotInfo{}, err
	}

	dir := filepath.Join(s.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storage.SnapshotInfo{}, err
	}

	info := storage.NewInfo(name, c)
	total := storage.Total(c)
	current := 0

	for _, partition := range absa.PartitionNames() {
		path := filepath.Join(dir, partition+".json")
		part := c.Get(partition)

		// a partition absent now must not survive from a previous write
		if !part.IsPresent() {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return storage.SnapshotInfo{}, err
			}
			continue
		}

		content, err := encodeLines(part.Items())
		if err != nil {
			return storage.SnapshotInfo{}, err
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return storage.SnapshotInfo{}, err
		}

		for range part.Items() {
			current++
			if progress != nil {
				progress(current, total, partition)
			}
		}
	}

	meta, err := json.MarshalIndent(info, "", "\t")
	if err != nil {
		return storage.SnapshotInfo{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), meta, 0o644); err != nil {
		return storage.SnapshotInfo{}, err
	}

	return info, nil
}

// encodeLines formats the documents as a JSON array with a document per
// line.
func encodeLines(docs []absa.Document) ([]byte, error) {
	if len(docs) == 0 {
		return []byte("[]\n"), nil
	}

	var b bytes.Buffer
	b.WriteString("[\n")
	for i, doc := range docs {
		line, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		b.WriteByte('\t')
		b.Write(line)
		if i < len(docs)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("]\n")
	return b.Bytes(), nil
}
