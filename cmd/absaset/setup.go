package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/config"
	"github.com/revelaction/absaset/dataset"
	"github.com/revelaction/absaset/metrics"
	"github.com/revelaction/absaset/resource"
	"github.com/revelaction/absaset/storage"
	"github.com/revelaction/absaset/storage/filesystem"
	"github.com/revelaction/absaset/storage/sqlite/zombiezen"
)

// env holds what the commands share, built once from the global flags.
type env struct {
	cfg         config.Config
	logger      *logrus.Logger
	metrics     *metrics.Metrics
	pipeline    *dataset.Pipeline
	metricsFile string
}

func setup(c *cli.Context, ui UI) (*env, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("seed") {
		seed := c.Int64("seed")
		cfg.Seed = &seed
	}
	if c.IsSet("dev-fraction") {
		f := c.Float64("dev-fraction")
		cfg.DevFraction = &f
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(ui.Err)
	logger.SetLevel(cfg.Level())

	m := metrics.New()

	var remote resource.Reader
	if needsS3(cfg) {
		client, err := resource.NewS3Client(c.Context, cfg.S3.Region, cfg.S3.Endpoint)
		if err != nil {
			return nil, err
		}
		remote = resource.NewS3Reader(client)
	}

	return &env{
		cfg:         cfg,
		logger:      logger,
		metrics:     m,
		pipeline:    dataset.NewPipeline(dataset.Builtin(), cfg, resource.NewMux(remote), logger, m),
		metricsFile: c.String("metrics-file"),
	}, nil
}

// needsS3 reports whether any locator of the configuration is in S3.
func needsS3(cfg config.Config) bool {
	if resource.IsS3(cfg.DataDir) {
		return true
	}
	for _, loc := range cfg.Datasets {
		for _, l := range []string{loc.Train, loc.Dev, loc.Test, loc.TrainLabels, loc.TestLabels} {
			if resource.IsS3(l) {
				return true
			}
		}
	}
	return false
}

// NewSnapshotRepository returns the snapshot store at path. Directories, and
// paths without a database extension, are filesystem stores. The returned
// closer releases the store.
func NewSnapshotRepository(path string) (storage.SnapshotRepository, io.Closer, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return filesystem.NewSnapshotStore(path), nopCloser{}, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, nil, err
	case err != nil && !isDatabase(path):
		return filesystem.NewSnapshotStore(path), nopCloser{}, nil
	}

	s, err := zombiezen.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return s, s, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func isDatabase(path string) bool {
	switch filepath.Ext(path) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// corpus returns the named corpus, read from the snapshot store at
// snapshot when given, loaded from the raw resources otherwise.
func (e *env) corpus(c *cli.Context, name, snapshot string) (absa.Corpus, error) {
	if snapshot == "" {
		return e.pipeline.Load(c.Context, name)
	}

	repo, closer, err := NewSnapshotRepository(snapshot)
	if err != nil {
		return absa.Corpus{}, err
	}
	defer closer.Close()

	_, corpus, err := repo.Read(name)
	if err != nil {
		return absa.Corpus{}, fmt.Errorf("snapshot %s: %w", snapshot, err)
	}
	return corpus, nil
}
