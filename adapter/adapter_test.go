package adapter

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
	"golang.org/x/text/encoding/unicode"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/metrics"
	"github.com/revelaction/absaset/resource"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
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

func newDeps(t *testing.T) (Deps, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	return Deps{Logger: logger, Dataset: "test", Seed: 1234}, hook
}

func TestNoPartitions(t *testing.T) {
	d, _ := newDeps(t)
	_, err := NewMarkup(d, SemEval2014).Load(context.Background(), Locators{Dev: "dev.xml"})
	assert.ErrorIs(t, err, ErrNoPartitions)

	_, err = NewWeibo(d).Load(context.Background(), Locators{})
	assert.ErrorIs(t, err, ErrNoPartitions)
}

const semeval2014 = `<?xml version="1.0" encoding="UTF-8"?>
<sentences>
    <sentence id="1">
        <text>great pizza but slow service</text>
        <aspectTerms>
            <aspectTerm term="pizza" polarity="positive" from="6" to="11"/>
            <aspectTerm term="service" polarity="negative" from="21" to="28"/>
        </aspectTerms>
        <aspectCategories>
            <aspectCategory category="food" polarity="positive"/>
            <aspectCategory category="service" polarity="negative"/>
        </aspectCategories>
    </sentence>
    <sentence id="2">
        <text>The staff &amp; the décor</text>
        <aspectTerms>
            <aspectTerm term="décor" polarity="neutral" from="16" to="21"/>
            <aspectTerm term="staff" polarity="negative" from="0" to="3"/>
        </aspectTerms>
    </sentence>
</sentences>
`

func TestMarkupSemEval2014(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.xml", semeval2014)
	testLoc := writeFile(t, dir, "test.xml", semeval2014)

	d, hook := newDeps(t)
	m := metrics.New()
	d.Metrics = m

	c, err := NewMarkup(d, SemEval2014).Load(context.Background(), Locators{Train: train, Test: testLoc})
	require.NoError(t, err)

	assert.False(t, c.Dev.IsPresent())
	require.True(t, c.Train.IsPresent())
	require.Equal(t, 2, c.Train.Len())

	doc := c.Train.Items()[0]
	assert.Equal(t, "great pizza but slow service", doc.Text.Text)
	assert.Equal(t, "1", doc.SampleID)
	require.Len(t, doc.Sentences, 1)

	s := doc.Sentences[0]
	assert.Equal(t, 0, s.StartIndexInDoc)
	assert.Equal(t, []absa.AspectTerm{
		{Term: "pizza", Polarity: "positive", From: 6, To: 11},
		{Term: "service", Polarity: "negative", From: 21, To: 28},
	}, s.Terms)
	assert.Equal(t, []absa.AspectCategory{
		{Category: "food", Polarity: "positive"},
		{Category: "service", Polarity: "negative"},
	}, s.Categories)

	s2 := c.Train.Items()[1].Sentences[0]
	assert.Equal(t, "The staff & the décor", s2.Text.Text)
	require.Len(t, s2.Terms, 2)
	assert.True(t, s2.Terms[0].SpanMatches(s2.Text.Text))

	// the mismatching term is kept and reported, once per partition
	assert.Equal(t, "staff", s2.Terms[1].Term)
	assert.Equal(t, 2, warnings(hook, "aspect term does not match its span"))

	expected := `
# HELP absaset_span_mismatches_total Number of aspect terms whose offsets do not match the term text
# TYPE absaset_span_mismatches_total counter
absaset_span_mismatches_total{dataset="test"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "absaset_span_mismatches_total"))
}

func TestMarkupIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.xml", semeval2014)

	d, _ := newDeps(t)
	a := NewMarkup(d, SemEval2014)

	c1, err := a.Load(context.Background(), Locators{Train: train})
	require.NoError(t, err)
	c2, err := a.Load(context.Background(), Locators{Train: train})
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestMarkupMissingResource(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.xml", semeval2014)

	d, _ := newDeps(t)
	_, err := NewMarkup(d, SemEval2014).Load(context.Background(), Locators{
		Train: train,
		Test:  filepath.Join(dir, "missing.xml"),
	})
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

const semeval2015 = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Reviews>
  <Review rid="r1">
    <sentences>
      <sentence id="r1:0">
        <text>Food was great.</text>
        <Opinions>
          <Opinion target="Food" category="FOOD#QUALITY" polarity="positive" from="0" to="4"/>
          <Opinion target="NULL" category="SERVICE#GENERAL" polarity="negative" from="0" to="0"/>
        </Opinions>
      </sentence>
      <sentence id="r1:1">
        <text>Ok.</text>
      </sentence>
    </sentences>
  </Review>
</Reviews>
`

func TestMarkupSemEval2015(t *testing.T) {
	dir := t.TempDir()
	testLoc := writeFile(t, dir, "test.xml", semeval2015)

	d, hook := newDeps(t)
	c, err := NewMarkup(d, SemEval2015).Load(context.Background(), Locators{Test: testLoc})
	require.NoError(t, err)

	assert.False(t, c.Train.IsPresent())
	require.Equal(t, 1, c.Test.Len())

	doc := c.Test.Items()[0]
	assert.Equal(t, "r1", doc.SampleID)
	assert.Equal(t, "Food was great.Ok.", doc.Text.Text)
	require.Len(t, doc.Sentences, 2)
	assert.Equal(t, 0, doc.Sentences[0].StartIndexInDoc)
	assert.Equal(t, 15, doc.Sentences[1].StartIndexInDoc)

	assert.Equal(t, []absa.AspectTerm{
		{Term: "Food", Polarity: "positive", From: 0, To: 4, Category: "FOOD#QUALITY"},
		{Term: "NULL", Polarity: "negative", From: 0, To: 0, Category: "SERVICE#GENERAL"},
	}, doc.Sentences[0].Terms)
	assert.Empty(t, doc.Sentences[0].Categories)
	assert.Empty(t, doc.Sentences[1].Terms)
	assert.Empty(t, hook.AllEntries())
}

const semeval2016Text = `<Reviews>
<Review rid="1004293">
<sentences>
<sentence id="1004293:0"><text>Judging from previous posts</text></sentence>
<sentence id="1004293:1"><text> this used to be good.</text></sentence>
</sentences>
<Opinions>
<Opinion category="RESTAURANT#GENERAL" polarity="negative"/>
<Opinion category="SERVICE#GENERAL" polarity="negative"/>
</Opinions>
</Review>
</Reviews>`

func TestMarkupDocumentScope(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.xml", semeval2016Text)

	d, _ := newDeps(t)
	c, err := NewMarkup(d, SemEval2016Text).Load(context.Background(), Locators{Train: train})
	require.NoError(t, err)

	doc := c.Train.Items()[0]
	assert.Equal(t, "Judging from previous posts this used to be good.", doc.Text.Text)
	assert.Equal(t, []absa.AspectCategory{
		{Category: "RESTAURANT#GENERAL", Polarity: "negative"},
		{Category: "SERVICE#GENERAL", Polarity: "negative"},
	}, doc.Categories)
	assert.Empty(t, doc.Terms)
	for _, s := range doc.Sentences {
		assert.Empty(t, s.Categories)
		assert.Empty(t, s.Terms)
	}
}

func TestMarkupMalformedOffsets(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.xml", `<sentences><sentence id="9"><text>bad offsets</text>
<aspectTerms><aspectTerm term="bad" polarity="negative" from="" to="3"/></aspectTerms></sentence></sentences>`)

	d, hook := newDeps(t)
	c, err := NewMarkup(d, SemEval2014).Load(context.Background(), Locators{Train: train})
	require.NoError(t, err)

	assert.Equal(t, []absa.AspectTerm{
		{Term: "bad", Polarity: "negative", From: absa.UnknownOffset, To: absa.UnknownOffset},
	}, c.Train.Items()[0].Sentences[0].Terms)
	assert.Equal(t, 1, warnings(hook, "aspect term with malformed offsets"))
	assert.Zero(t, warnings(hook, "aspect term does not match its span"))
}

func TestPlaceholder(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.raw", strings.Join([]string{
		"the $T$ is great",
		"Pizza",
		"1",
		"$T$ was slow",
		"Service",
		"-1",
		"i hate the $T$",
		"price",
		"5",
		"dangling",
	}, "\n")+"\n")

	d, hook := newDeps(t)
	c, err := NewPlaceholder(d).Load(context.Background(), Locators{Train: train})
	require.NoError(t, err)

	assert.False(t, c.Test.IsPresent())
	docs := c.Train.Items()
	require.Len(t, docs, 3)

	assert.Equal(t, "the pizza is great", docs[0].Text.Text)
	assert.Equal(t, []absa.AspectTerm{{Term: "pizza", Polarity: "positive", From: 4, To: 9}}, docs[0].Sentences[0].Terms)

	assert.Equal(t, "service was slow", docs[1].Text.Text)
	assert.Equal(t, []absa.AspectTerm{{Term: "service", Polarity: "negative", From: 0, To: 7}}, docs[1].Sentences[0].Terms)

	assert.Equal(t, "i hate the price", docs[2].Text.Text)
	assert.Equal(t, "5", docs[2].Sentences[0].Terms[0].Polarity)
	assert.Equal(t, 11, docs[2].Sentences[0].Terms[0].From)

	for _, doc := range docs {
		for _, term := range doc.Sentences[0].Terms {
			assert.True(t, term.SpanMatches(doc.Text.Text))
		}
	}

	assert.Equal(t, 1, warnings(hook, "unknown polarity code"))
	assert.Equal(t, 1, warnings(hook, "ignoring incomplete trailing sample"))
}

func TestPlaceholderChineseOffsets(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.raw", "这个 $T$ 很好\n手机\n1\n")

	d, hook := newDeps(t)
	c, err := NewPlaceholder(d).Load(context.Background(), Locators{Train: train})
	require.NoError(t, err)

	term := c.Train.Items()[0].Sentences[0].Terms[0]
	assert.Equal(t, 3, term.From)
	assert.Equal(t, 5, term.To)
	assert.Empty(t, hook.AllEntries())
}

func utf16(t *testing.T, s string) string {
	t.Helper()
	raw, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return string(raw)
}

func weiboTrain(n int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-16"?>` + "\n<weibos>\n")
	for i := 0; i < n; i++ {
		sb.WriteString(`<weibo id="w` + string(rune('0'+i)) + `">`)
		sb.WriteString(`<sentence id="1" opinionated="N">今天天气</sentence>`)
		sb.WriteString(`<sentence id="2" opinionated="Y" polarity="NEG" ` +
			`target_word_1="手机" target_begin_1="2" target_end_1="3" target_polarity_1="NEG" ` +
			`target_word_2="电池" target_begin_2="x" target_end_2="5" target_polarity_2="NEG" ` +
			`target_word_3="不好" target_begin_3="6" target_end_3="7" target_polarity_3="NEG">这个手机电池不好</sentence>`)
		sb.WriteString("</weibo>\n")
	}
	sb.WriteString("</weibos>\n")
	return sb.String()
}

func TestWeiboTrain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "train/part1.xml", utf16(t, weiboTrain(3)))
	writeFile(t, dir, "train/part2.xml", utf16(t, weiboTrain(2)))

	d, hook := newDeps(t)
	c, err := NewWeibo(d).Load(context.Background(), Locators{Train: filepath.Join(dir, "train")})
	require.NoError(t, err)

	require.True(t, c.Dev.IsPresent())
	assert.Equal(t, 4, c.Train.Len())
	assert.Equal(t, 1, c.Dev.Len())
	assert.False(t, c.Test.IsPresent())

	doc := c.Train.Items()[0]
	assert.Equal(t, "今天天气这个手机电池不好", doc.Text.Text)
	require.Len(t, doc.Sentences, 2)

	first := doc.Sentences[0]
	assert.Empty(t, first.Polarity)
	assert.Empty(t, first.Terms)

	second := doc.Sentences[1]
	assert.Equal(t, "NEG", second.Polarity)
	assert.Equal(t, 4, second.StartIndexInDoc)
	assert.Equal(t, []absa.AspectTerm{
		{Term: "手机", Polarity: "NEG", From: 2, To: 4},
		{Term: "电池", Polarity: "NEG", From: absa.UnknownOffset, To: absa.UnknownOffset},
		{Term: "不好", Polarity: "NEG", From: 6, To: 8},
	}, second.Terms)

	assert.Equal(t, 5, warnings(hook, "target with malformed offsets"))

	again, err := NewWeibo(d).Load(context.Background(), Locators{Train: filepath.Join(dir, "train")})
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestWeiboTest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test/a.txt", "header\n手机很好用\n天气不错\nroot_text_begin\n手机很好用\n")
	writeFile(t, dir, "test/a.ann", "T1\tOpinion 0 5\t很好用\n\nT2\tbroken\n")
	writeFile(t, dir, "test/b.txt", "header\nline\n")
	writeFile(t, dir, "test/b.ann", "")

	d, hook := newDeps(t)
	c, err := NewWeibo(d).Load(context.Background(), Locators{Test: filepath.Join(dir, "test")})
	require.NoError(t, err)

	assert.False(t, c.Train.IsPresent())
	assert.False(t, c.Dev.IsPresent())
	docs := c.Test.Items()
	require.Len(t, docs, 2)

	a := docs[0]
	assert.Equal(t, "a", a.SampleID)
	require.Len(t, a.Sentences, 2)
	assert.Equal(t, absa.Other, a.Sentences[0].Polarity)
	assert.Empty(t, a.Sentences[1].Polarity)
	assert.Equal(t, 5, a.Sentences[1].StartIndexInDoc)

	b := docs[1]
	assert.Equal(t, "line", b.Text.Text)
	assert.Empty(t, b.Sentences[0].Polarity)

	assert.Equal(t, 1, warnings(hook, "skipping annotation line without opinion text"))
}

func TestWeiboTestMissingAnnotations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test/a.txt", "header\nline\n")

	d, _ := newDeps(t)
	_, err := NewWeibo(d).Load(context.Background(), Locators{Test: filepath.Join(dir, "test")})
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestDelimitedTextLabel(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "Train_DataSet.csv", "id,title,content\nn1,标题一,内容一\nn2,\"多行\n标题\",内容二\nn3,short\n")
	trainLabels := writeFile(t, dir, "Train_DataSet_Label.csv", "id,label\nn1,0\nn2,2\n")
	testLoc := writeFile(t, dir, "Test_DataSet.csv", "id,title,content\nt1,a,b\n")

	d, hook := newDeps(t)
	m := metrics.New()
	d.Metrics = m

	c, err := NewDelimited(d, LayoutTextLabel).Load(context.Background(), Locators{
		Train:       train,
		TrainLabels: trainLabels,
		Test:        testLoc,
	})
	require.NoError(t, err)

	docs := c.Train.Items()
	require.Len(t, docs, 3)
	assert.Equal(t, absa.Text{Text: "标题一。内容一", Polarity: "0", SampleID: "n1"}, docs[0].Text)
	assert.Equal(t, absa.Text{Text: "多行\n标题。内容二", Polarity: "2", SampleID: "n2"}, docs[1].Text)
	assert.Equal(t, absa.Text{Text: "short", SampleID: "n3"}, docs[2].Text)

	assert.Equal(t, absa.Text{Text: "a。b", SampleID: "t1"}, c.Test.Items()[0].Text)

	assert.Equal(t, 1, warnings(hook, "row column count differs from the header"))
	assert.Equal(t, 1, warnings(hook, "no label row"))

	expected := `
# HELP absaset_ragged_rows_total Number of delimited rows with an unexpected column count
# TYPE absaset_ragged_rows_total counter
absaset_ragged_rows_total{dataset="test"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "absaset_ragged_rows_total"))
}

func TestDelimitedTextLabelRequiresTrainLabels(t *testing.T) {
	d, _ := newDeps(t)
	_, err := NewDelimited(d, LayoutTextLabel).Load(context.Background(), Locators{Train: "train.csv"})
	assert.ErrorIs(t, err, ErrNoLabels)
}

func TestDelimitedEntities(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "Train_Data.csv", "id,title,text,entity,negative,key_entity\nf1,T,C,甲;乙;丙,1,乙\n")
	testLoc := writeFile(t, dir, "Test_Data.csv", "id,title,text,entity\nf2,T2,C2,甲\n")

	d, _ := newDeps(t)
	c, err := NewDelimited(d, LayoutEntities).Load(context.Background(), Locators{Train: train, Test: testLoc})
	require.NoError(t, err)

	doc := c.Train.Items()[0]
	assert.Equal(t, absa.Text{Text: "Tcontent-begin。C", Polarity: "1", SampleID: "f1"}, doc.Text)
	assert.Equal(t, []absa.AspectCategory{
		{Category: "甲", Polarity: "0"},
		{Category: "乙", Polarity: "1"},
		{Category: "丙", Polarity: "0"},
	}, doc.Categories)

	testDoc := c.Test.Items()[0]
	assert.Equal(t, "0", testDoc.Polarity)
	assert.Equal(t, []absa.AspectCategory{{Category: "甲", Polarity: "0"}}, testDoc.Categories)
}

func TestParseMarkupIsLenient(t *testing.T) {
	root, err := parseMarkup(`<Sentences><Sentence ID="1" Opinionated="Y">a &nbsp;b<br>c</Sentence></Sentences>`)
	require.NoError(t, err)

	sentences := root.findAll("sentence")
	require.Len(t, sentences, 1)
	id, ok := sentences[0].attr("id")
	assert.True(t, ok)
	assert.Equal(t, "1", id)
	assert.Equal(t, "a \u00a0bc", sentences[0].text())
}
