package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/metrics"
	"github.com/revelaction/absaset/resource"
)

// ErrNoPartitions is returned by Load when neither a train nor a test
// locator is given.
var ErrNoPartitions = errors.New("no train or test locator")

// ErrNoLabels is returned by Load when a dialect keeping its labels in a
// separate file is given data without the labels locator.
var ErrNoLabels = errors.New("labels locator is required")

// Adapter turns the raw resources of one annotation dialect into a
// canonical corpus.
type Adapter interface {
	Load(ctx context.Context, loc Locators) (absa.Corpus, error)
}

// Locators names the resources of a dataset. An empty locator means the
// dataset has no such resource.
type Locators struct {
	Train string `yaml:"train"`
	Dev   string `yaml:"dev"`
	Test  string `yaml:"test"`

	// Label files of dialects that keep labels apart from the data
	TrainLabels string `yaml:"train_labels"`
	TestLabels  string `yaml:"test_labels"`
}

// Deps are the collaborators shared by all adapters.
type Deps struct {
	Reader  resource.Reader
	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics

	// Seed of the splits some adapters do on their own
	Seed int64

	// Dataset names the corpus in logs and metrics
	Dataset string
}

func (d Deps) withDefaults() Deps {
	if d.Reader == nil {
		d.Reader = resource.FileReader{}
	}
	if d.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Logger = l
	}
	return d
}

func (d Deps) log(partition string) logrus.FieldLogger {
	return d.Logger.WithFields(logrus.Fields{
		"dataset":   d.Dataset,
		"partition": partition,
	})
}

// checkTerm logs and counts a term whose offsets do not select its text.
// The term is kept either way.
func (d Deps) checkTerm(partition, sampleID, text string, t absa.AspectTerm) {
	if t.SpanMatches(text) {
		return
	}

	span, _ := absa.Span(text, t.From, t.To)
	d.log(partition).WithFields(logrus.Fields{
		"sample": sampleID,
		"term":   t.Term,
		"span":   span,
		"from":   t.From,
		"to":     t.To,
	}).Warn("aspect term does not match its span")
	d.Metrics.SpanMismatch(d.Dataset)
}

// partitionLoader parses the resource at locator into the documents of a
// partition.
type partitionLoader func(ctx context.Context, partition, locator string) ([]absa.Document, error)

// loadPartitions runs load for every partition with a locator. Partitions
// without one are absent.
func loadPartitions(ctx context.Context, d Deps, loc Locators, load partitionLoader) (absa.Corpus, error) {
	if loc.Train == "" && loc.Test == "" {
		return absa.Corpus{}, ErrNoPartitions
	}

	locators := map[string]string{
		absa.Train: loc.Train,
		absa.Dev:   loc.Dev,
		absa.Test:  loc.Test,
	}

	var c absa.Corpus
	for _, name := range absa.PartitionNames() {
		locator := locators[name]
		if locator == "" {
			continue
		}

		docs, err := load(ctx, name, locator)
		if err != nil {
			return absa.Corpus{}, fmt.Errorf("%s %s: %w", d.Dataset, name, err)
		}

		d.Metrics.DocumentsLoaded(d.Dataset, name, len(docs))
		c = c.With(name, absa.Present(docs))
	}

	return c, nil
}
