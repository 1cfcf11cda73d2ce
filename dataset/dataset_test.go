package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/adapter"
	"github.com/revelaction/absaset/config"
	"github.com/revelaction/absaset/derive"
	"github.com/revelaction/absaset/metrics"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func raw(samples ...[3]string) string {
	var b strings.Builder
	for _, s := range samples {
		b.WriteString(s[0] + "\n" + s[1] + "\n" + s[2] + "\n")
	}
	return b.String()
}

func twitter() Entry {
	return Entry{
		Name: "tw",
		Locators: adapter.Locators{
			Train: "tw/train.raw",
			Test:  "tw/test.raw",
		},
		New:   placeholder,
		Tasks: map[derive.Task]derive.Rules{derive.TaskTerm: termRules},
	}
}

func twitterFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "tw/train.raw", raw(
		[3]string{"$T$ is great", "pizza", "1"},
		[3]string{"the $T$ was slow", "service", "-1"},
		[3]string{"$T$ ok", "price", "0"},
		[3]string{"love the $T$", "view", "1"},
		[3]string{"$T$ too loud", "music", "-1"},
	))
	writeFile(t, dir, "tw/test.raw", raw(
		[3]string{"bad $T$", "wine", "-1"},
	))
	return dir
}

func warnings(hook *test.Hook, msg string) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == msg {
			n++
		}
	}
	return n
}

func TestResolveUnknown(t *testing.T) {
	_, err := Builtin().Resolve("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuiltinNames(t *testing.T) {
	names := Builtin().Names()
	assert.Len(t, names, 17)
	assert.Contains(t, names, "SemEval-2014-Task-4-REST")
	assert.Contains(t, names, "MAMSACSA")
	assert.Contains(t, names, "nlpcc2012-weibo-sa")
	assert.Contains(t, names, "ASGCN-TWITTER")
	assert.IsIncreasing(t, names)
}

func TestBuiltinTasks(t *testing.T) {
	r := Builtin()

	e, err := r.Resolve("SemEval-2016-Task-5-REST-SB1")
	require.NoError(t, err)
	assert.Equal(t, []derive.Task{
		derive.TaskTerm,
		derive.TaskCategory,
		derive.TaskCategoryDetection,
		derive.TaskEntityDetection,
	}, e.SupportedTasks())

	rules, err := e.Rules(derive.TaskCategory)
	require.NoError(t, err)
	assert.Equal(t, derive.SourceTerms, rules.Source)
	assert.True(t, rules.DropEmpty)

	// the other SB1 entries are not affected by the REST overrides
	e, err = r.Resolve("SemEval-2016-Task-5-LAPT-SB1")
	require.NoError(t, err)
	rules, err = e.Rules(derive.TaskCategory)
	require.NoError(t, err)
	assert.Equal(t, derive.SourceCategories, rules.Source)

	for _, task := range []derive.Task{derive.TaskTerm, derive.TaskCategoryDetection} {
		rules, err = e.Rules(task)
		require.NoError(t, err)
		assert.True(t, rules.DropEmpty, task)
	}

	e, err = r.Resolve("SemEval-2016-Task-5-LAPT-SB2")
	require.NoError(t, err)
	rules, err = e.Rules(derive.TaskCategoryDetection)
	require.NoError(t, err)
	assert.True(t, rules.DropEmpty)
	rules, err = e.Rules(derive.TaskCategory)
	require.NoError(t, err)
	assert.False(t, rules.DropEmpty)

	e, err = r.Resolve("SemEval-2015-Task-12-HOTEL")
	require.NoError(t, err)
	assert.Empty(t, e.Locators.Train)
}

func TestUnsupportedTask(t *testing.T) {
	e, err := Builtin().Resolve("ASGCN-TWITTER")
	require.NoError(t, err)

	_, err = e.Rules(derive.TaskCategory)
	assert.ErrorIs(t, err, ErrUnsupportedTask)

	_, err = e.Rules("nope")
	assert.ErrorIs(t, err, derive.ErrUnknownTask)
}

func TestPipelineLocators(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "/data"
	cfg.Datasets = map[string]adapter.Locators{
		"tw": {Test: "/elsewhere/test.raw", Dev: "tw/dev.raw"},
	}

	p := NewPipeline(NewRegistry(twitter()), cfg, nil, nil, nil)
	assert.Equal(t, adapter.Locators{
		Train: "/data/tw/train.raw",
		Dev:   "/data/tw/dev.raw",
		Test:  "/elsewhere/test.raw",
	}, p.Locators(twitter()))

	cfg.DataDir = "s3://corpora/absa"
	p = NewPipeline(NewRegistry(twitter()), cfg, nil, nil, nil)
	assert.Equal(t, "s3://corpora/absa/tw/train.raw", p.Locators(twitter()).Train)
}

func TestPipelineDerive(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = twitterFixture(t)

	logger, _ := test.NewNullLogger()
	m := metrics.New()
	p := NewPipeline(NewRegistry(twitter()), cfg, nil, logger, m)

	res, err := p.Derive(context.Background(), "tw", derive.TaskTerm)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Samples.Train.Len())
	assert.Equal(t, 1, res.Samples.Dev.Len())
	assert.Equal(t, 1, res.Samples.Test.Len())
	assert.Equal(t, "bad wine", res.Samples.Test.Items()[0].Content)
	assert.Equal(t, []string{"negative", "neutral", "positive"}, res.Polarities)

	again, err := p.Derive(context.Background(), "tw", derive.TaskTerm)
	require.NoError(t, err)
	assert.Equal(t, res.Samples, again.Samples)

	expected := `
# HELP absaset_samples_derived_total Number of samples emitted by the derivation engine
# TYPE absaset_samples_derived_total counter
absaset_samples_derived_total{dataset="tw",partition="dev",task="term"} 2
absaset_samples_derived_total{dataset="tw",partition="test",task="term"} 2
absaset_samples_derived_total{dataset="tw",partition="train",task="term"} 8
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "absaset_samples_derived_total"))
}

func TestPipelineDeriveZeroFraction(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = twitterFixture(t)
	zero := 0.0
	cfg.DevFraction = &zero

	logger, hook := test.NewNullLogger()
	p := NewPipeline(NewRegistry(twitter()), cfg, nil, logger, nil)

	res, err := p.Derive(context.Background(), "tw", derive.TaskTerm)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Samples.Train.Len())
	assert.Equal(t, res.Samples.Test, res.Samples.Dev)
	assert.Equal(t, 1, warnings(hook, "dev fraction is zero, dev partition is the test partition"))
}

func TestPipelineDeriveUnsupportedTask(t *testing.T) {
	// nothing is read before the task is checked
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	p := NewPipeline(NewRegistry(twitter()), cfg, nil, nil, nil)

	_, err := p.Derive(context.Background(), "tw", derive.TaskSentiment)
	assert.ErrorIs(t, err, ErrUnsupportedTask)

	_, err = p.Derive(context.Background(), "unknown", derive.TaskTerm)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPipelineLoadMissingResource(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	p := NewPipeline(NewRegistry(twitter()), cfg, nil, nil, nil)

	_, err := p.Load(context.Background(), "tw")
	assert.Error(t, err)
}

// markupPipeline returns a pipeline over the builtin registry where the
// train and test locators of name both point to a file with content.
func markupPipeline(t *testing.T, name, content string) *Pipeline {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "corpus.xml", content)

	cfg := config.Default()
	cfg.DataDir = dir
	cfg.Datasets[name] = adapter.Locators{Train: "corpus.xml", Test: "corpus.xml"}

	logger, _ := test.NewNullLogger()
	return NewPipeline(Builtin(), cfg, nil, logger, nil)
}

const restaurants = `<sentences>
<sentence id="1"><text>great pizza</text>
<aspectTerms><aspectTerm term="pizza" polarity="positive" from="6" to="11"/></aspectTerms>
<aspectCategories><aspectCategory category="food" polarity="positive"/></aspectCategories>
</sentence>
<sentence id="2"><text>we went there on friday</text></sentence>
</sentences>`

func TestPipelineDeriveDropsUnlabeledTerms(t *testing.T) {
	p := markupPipeline(t, "SemEval-2014-Task-4-REST", restaurants)

	res, err := p.Derive(context.Background(), "SemEval-2014-Task-4-REST", derive.TaskTerm)
	require.NoError(t, err)

	samples := res.Samples.Test.Items()
	require.Len(t, samples, 1)
	assert.Equal(t, "1", samples[0].ID)
	assert.Equal(t, 1, res.Dropped[absa.Test])
}

func TestPipelineDeriveKeepsUnlabeledCategories(t *testing.T) {
	p := markupPipeline(t, "SemEval-2014-Task-4-REST", restaurants)

	res, err := p.Derive(context.Background(), "SemEval-2014-Task-4-REST", derive.TaskCategory)
	require.NoError(t, err)

	samples := res.Samples.Test.Items()
	require.Len(t, samples, 2)
	assert.Equal(t, []absa.AspectCategory{{Category: "food", Polarity: "positive"}}, samples[0].Categories)
	assert.Empty(t, samples[1].Categories)
}

func TestPipelineDeriveDropsUnlabeledCategoryDetection(t *testing.T) {
	laptops := `<Reviews><Review rid="r1"><sentences>
<sentence id="r1:1"><text>fast machine</text>
<Opinions><Opinion category="LAPTOP#PERFORMANCE" polarity="positive"/></Opinions>
</sentence>
<sentence id="r1:2"><text>bought it in may</text></sentence>
</sentences></Review></Reviews>`
	p := markupPipeline(t, "SemEval-2016-Task-5-LAPT-SB1", laptops)

	res, err := p.Derive(context.Background(), "SemEval-2016-Task-5-LAPT-SB1", derive.TaskCategoryDetection)
	require.NoError(t, err)

	samples := res.Samples.Test.Items()
	require.Len(t, samples, 1)
	assert.Equal(t, []string{"LAPTOP#PERFORMANCE"}, samples[0].Classes)
}
