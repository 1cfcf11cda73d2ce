package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelaction/absaset/dataset"
	"github.com/revelaction/absaset/derive"
	"github.com/revelaction/absaset/render"
)

const twitterDir = "ASGCN/acl-14-short-data"

// dataDir writes a small ASGCN-TWITTER corpus: five train samples, one
// test sample.
func dataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, twitterDir), 0o755))

	train := "$T$ is great\npizza\n1\n" +
		"the $T$ was slow\nservice\n-1\n" +
		"$T$ ok\nprice\n0\n" +
		"love the $T$\nview\n1\n" +
		"$T$ too loud\nmusic\n-1\n"
	test := "bad $T$\nwine\n-1\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, twitterDir, "train.raw"), []byte(train), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, twitterDir, "test.raw"), []byte(test), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := newApp(UI{Out: &out, Err: &errOut}).Run(append([]string{"absaset"}, args...))
	return out.String(), errOut.String(), err
}

func lines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "absaset version dev (commit: none)\n", out)
}

func TestDatasets(t *testing.T) {
	out, _, err := run(t, "datasets")
	require.NoError(t, err)

	rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, rows, len(dataset.Builtin().Names()))
	assert.Contains(t, out, "ASGCN-TWITTER")
	for _, row := range rows {
		if strings.HasPrefix(row, "ASGCN-TWITTER ") {
			assert.True(t, strings.HasSuffix(row, " term"), row)
		}
	}
}

func TestLoad(t *testing.T) {
	out, _, err := run(t, "--data-dir", dataDir(t), "load", "ASGCN-TWITTER")
	require.NoError(t, err)
	assert.Equal(t, "train 5 documents\ndev   absent\ntest  1 documents\n", out)
}

func TestLoadUnknownDataset(t *testing.T) {
	_, _, err := run(t, "load", "nope")
	assert.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestLoadMissingArgument(t *testing.T) {
	_, _, err := run(t, "load")
	assert.ErrorContains(t, err, "missing dataset argument")
}

func TestInvalidDevFraction(t *testing.T) {
	_, _, err := run(t, "--dev-fraction", "1.5", "datasets")
	assert.ErrorContains(t, err, "dev_fraction")
}

func TestDerive(t *testing.T) {
	out := t.TempDir()
	metricsFile := filepath.Join(t.TempDir(), "absaset.prom")

	_, _, err := run(t, "--data-dir", dataDir(t), "--metrics-file", metricsFile,
		"derive", "--out", out, "ASGCN-TWITTER", "term")
	require.NoError(t, err)

	assert.Len(t, lines(t, filepath.Join(out, "train.jsonl")), 4)
	assert.Len(t, lines(t, filepath.Join(out, "dev.jsonl")), 1)

	test := lines(t, filepath.Join(out, "test.jsonl"))
	require.Len(t, test, 1)
	var s derive.Sample
	require.NoError(t, json.Unmarshal([]byte(test[0]), &s))
	assert.Equal(t, "bad wine", s.Content)
	require.Len(t, s.Terms, 1)
	assert.Equal(t, "wine", s.Terms[0].Term)

	content, err := os.ReadFile(filepath.Join(out, vocabularyFile))
	require.NoError(t, err)
	var v render.Vocabulary
	require.NoError(t, json.Unmarshal(content, &v))
	assert.Equal(t, derive.TaskTerm, v.Task)
	assert.Equal(t, []string{"negative", "neutral", "positive"}, v.Polarities)
	assert.Empty(t, v.Categories)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "absaset_samples_derived_total")
}

func TestDeriveUnsupportedTask(t *testing.T) {
	out := t.TempDir()
	_, _, err := run(t, "--data-dir", dataDir(t), "derive", "--out", out, "ASGCN-TWITTER", "category")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(out, "train.jsonl"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDeriveRequiresOut(t *testing.T) {
	_, _, err := run(t, "--data-dir", dataDir(t), "derive", "ASGCN-TWITTER", "term")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	out, _, err := run(t, "--data-dir", dataDir(t),
		"show", "--no-color", "--no-prefix", "--format", "text", "--start", "1", "--count", "2", "ASGCN-TWITTER")
	require.NoError(t, err)
	assert.Equal(t, "the service was slow\nprice ok\n", out)
}

func TestShowAbsentPartition(t *testing.T) {
	_, _, err := run(t, "--data-dir", dataDir(t), "show", "--partition", "dev", "ASGCN-TWITTER")
	assert.ErrorContains(t, err, "no dev partition")
}

func TestShowUnknownFormat(t *testing.T) {
	_, _, err := run(t, "--data-dir", dataDir(t), "show", "--format", "xml", "ASGCN-TWITTER")
	assert.ErrorContains(t, err, "unknown format")
}

func TestStat(t *testing.T) {
	out, _, err := run(t, "--data-dir", dataDir(t), "stat", "--no-color", "ASGCN-TWITTER")
	require.NoError(t, err)
	assert.Contains(t, out, "train: 5 documents, 5 sentences, 5 terms")
	assert.Contains(t, out, "test: 1 documents, 1 sentences, 1 terms")
	assert.NotContains(t, out, "dev:")
}

func TestSnapshots(t *testing.T) {
	data := dataDir(t)
	dir := filepath.Join(t.TempDir(), "snapshots")
	db := filepath.Join(t.TempDir(), "snapshots.db")

	_, _, err := run(t, "--data-dir", data, "save", "--to", dir, "ASGCN-TWITTER")
	require.NoError(t, err)

	out, _, err := run(t, "snapshots", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ASGCN-TWITTER "), out)
	assert.Contains(t, out, "train=5 test=1\n")

	out, _, err = run(t, "import-snapshot", "--from", dir, "--to", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully copied 1 snapshots")

	out, _, err = run(t, "snapshots", db)
	require.NoError(t, err)
	assert.Contains(t, out, "train=5 test=1\n")

	// the raw resources are not needed once saved
	out, _, err = run(t, "--data-dir", t.TempDir(),
		"show", "--snapshot", db, "--no-color", "--no-prefix", "--format", "text", "--partition", "test", "ASGCN-TWITTER")
	require.NoError(t, err)
	assert.Equal(t, "bad wine\n", out)

	exported := filepath.Join(t.TempDir(), "exported")
	_, _, err = run(t, "export-snapshot", "--from", db, "--to", exported)
	require.NoError(t, err)

	derived := t.TempDir()
	_, _, err = run(t, "derive", "--snapshot", exported, "--out", derived, "ASGCN-TWITTER", "term")
	require.NoError(t, err)
	assert.Len(t, lines(t, filepath.Join(derived, "test.jsonl")), 1)
}

func TestSnapshotNotFound(t *testing.T) {
	_, _, err := run(t, "show", "--snapshot", t.TempDir(), "ASGCN-TWITTER")
	assert.ErrorContains(t, err, "snapshot")
}
