package dataset

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/adapter"
	"github.com/revelaction/absaset/config"
	"github.com/revelaction/absaset/derive"
	"github.com/revelaction/absaset/metrics"
	"github.com/revelaction/absaset/resource"
	"github.com/revelaction/absaset/split"
	"github.com/revelaction/absaset/stat"
)

// Pipeline loads registered datasets and derives task samples from them.
type Pipeline struct {
	registry *Registry
	cfg      config.Config
	reader   resource.Reader
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics
}

func NewPipeline(r *Registry, cfg config.Config, reader resource.Reader, logger logrus.FieldLogger, m *metrics.Metrics) *Pipeline {
	if reader == nil {
		reader = resource.FileReader{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pipeline{
		registry: r,
		cfg:      cfg,
		reader:   reader,
		logger:   logger,
		metrics:  m,
	}
}

func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Locators returns the locators of e after the configured overrides, with
// relative locators joined to the data directory.
func (p *Pipeline) Locators(e Entry) adapter.Locators {
	loc := e.Locators
	if o, ok := p.cfg.Datasets[e.Name]; ok {
		loc = override(loc, o)
	}

	resolve := func(s string) string {
		if s == "" || resource.IsAbs(s) {
			return s
		}
		return resource.Join(p.cfg.DataDir, s)
	}

	return adapter.Locators{
		Train:       resolve(loc.Train),
		Dev:         resolve(loc.Dev),
		Test:        resolve(loc.Test),
		TrainLabels: resolve(loc.TrainLabels),
		TestLabels:  resolve(loc.TestLabels),
	}
}

func override(loc, o adapter.Locators) adapter.Locators {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&loc.Train, o.Train)
	set(&loc.Dev, o.Dev)
	set(&loc.Test, o.Test)
	set(&loc.TrainLabels, o.TrainLabels)
	set(&loc.TestLabels, o.TestLabels)
	return loc
}

// Load reads the named dataset into a canonical corpus.
func (p *Pipeline) Load(ctx context.Context, name string) (absa.Corpus, error) {
	e, err := p.registry.Resolve(name)
	if err != nil {
		return absa.Corpus{}, err
	}

	deps := adapter.Deps{
		Reader:  p.reader,
		Logger:  p.logger,
		Metrics: p.metrics,
		Seed:    p.cfg.SplitSeed(),
		Dataset: name,
	}

	p.logger.WithField("dataset", name).Debug("loading dataset")
	return e.New(deps).Load(ctx, p.Locators(e))
}

// Derive loads the named dataset and derives the samples of task, with a
// dev partition generated when the dataset has none.
func (p *Pipeline) Derive(ctx context.Context, name string, task derive.Task) (derive.Result, error) {
	e, err := p.registry.Resolve(name)
	if err != nil {
		return derive.Result{}, err
	}
	// fail on the task before reading anything
	if _, err := e.Rules(task); err != nil {
		return derive.Result{}, err
	}

	c, err := p.Load(ctx, name)
	if err != nil {
		return derive.Result{}, err
	}
	return p.DeriveCorpus(name, c, task)
}

// DeriveCorpus derives the samples of task from an already loaded corpus of
// the named dataset.
func (p *Pipeline) DeriveCorpus(name string, c absa.Corpus, task derive.Task) (derive.Result, error) {
	e, err := p.registry.Resolve(name)
	if err != nil {
		return derive.Result{}, err
	}
	rules, err := e.Rules(task)
	if err != nil {
		return derive.Result{}, err
	}

	res, err := derive.Derive(c, task, rules)
	if err != nil {
		return derive.Result{}, err
	}

	log := p.logger.WithFields(logrus.Fields{"dataset": name, "task": task})

	hadDev := res.Samples.Dev.IsPresent()
	res.Samples, err = split.GenerateDev(res.Samples, p.cfg.Fraction(), p.cfg.SplitSeed())
	if err != nil {
		return derive.Result{}, err
	}
	if !hadDev && p.cfg.Fraction() == 0 && res.Samples.Test.IsPresent() {
		log.Warn("dev fraction is zero, dev partition is the test partition")
	}

	res.Samples.Each(func(partition string, samples []derive.Sample) {
		p.metrics.SamplesDerived(name, string(task), partition, len(samples))
		if n := res.Dropped[partition]; n > 0 {
			p.metrics.SamplesDropped(name, string(task), partition, n)
			log.WithField("partition", partition).Infof("dropped %d samples without label", n)
		}

		if rules.Scope == derive.ScopeDocument && task != derive.TaskSentiment {
			for _, c := range stat.Sorted(stat.Categories(samples)) {
				log.WithFields(logrus.Fields{"partition": partition, "category": c.Label}).Debugf("%d samples", c.N)
			}
		}
	})

	return res, nil
}
