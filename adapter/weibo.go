package adapter

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/resource"
	"github.com/revelaction/absaset/split"
)

const (
	// weiboDevFraction of the pooled training weibos become the dev partition
	weiboDevFraction = 0.2

	// weiboTextEnd marks the end of the usable lines of a test file
	weiboTextEnd = "root_text_begin"

	weiboOpinionated = "Y"
)

// Weibo reads the NLPCC 2012 weibo corpus.
//
// The train locator is a directory of UTF-16LE markup files of weibo
// elements whose sentences enumerate their aspect terms in indexed
// attributes (target_word_1, target_begin_1, ...). The weibos of all files
// are pooled and split into train and dev.
//
// The test locator is a directory of text files, one sentence per line,
// each with a sibling .ann file whose third tab separated field is an
// opinion snippet. Sentences containing a snippet get the polarity "other".
type Weibo struct {
	deps Deps
}

var _ Adapter = (*Weibo)(nil)

func NewWeibo(d Deps) *Weibo {
	return &Weibo{deps: d.withDefaults()}
}

func (a *Weibo) Load(ctx context.Context, loc Locators) (absa.Corpus, error) {
	if loc.Train == "" && loc.Test == "" {
		return absa.Corpus{}, ErrNoPartitions
	}

	var c absa.Corpus
	if loc.Train != "" {
		pooled, err := a.loadTrain(ctx, loc.Train)
		if err != nil {
			return absa.Corpus{}, fmt.Errorf("%s %s: %w", a.deps.Dataset, absa.Train, err)
		}

		train, dev, err := split.TrainTest(pooled, weiboDevFraction, a.deps.Seed)
		if err != nil {
			return absa.Corpus{}, err
		}
		c.Train = absa.Present(train)
		c.Dev = absa.Present(dev)
		a.deps.Metrics.DocumentsLoaded(a.deps.Dataset, absa.Train, len(train))
		a.deps.Metrics.DocumentsLoaded(a.deps.Dataset, absa.Dev, len(dev))
	}

	if loc.Test != "" {
		test, err := a.loadTest(ctx, loc.Test)
		if err != nil {
			return absa.Corpus{}, fmt.Errorf("%s %s: %w", a.deps.Dataset, absa.Test, err)
		}
		c.Test = absa.Present(test)
		a.deps.Metrics.DocumentsLoaded(a.deps.Dataset, absa.Test, len(test))
	}

	return c, nil
}

func (a *Weibo) loadTrain(ctx context.Context, dir string) ([]absa.Document, error) {
	locators, err := a.deps.Reader.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	docs := []absa.Document{}
	for _, locator := range locators {
		content, err := a.deps.Reader.ReadAllContent(ctx, locator, resource.UTF16LE)
		if err != nil {
			return nil, err
		}

		root, err := parseMarkup(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", locator, err)
		}

		for _, el := range root.findAll("weibo") {
			docs = append(docs, a.weibo(el))
		}
	}

	return docs, nil
}

func (a *Weibo) weibo(el *element) absa.Document {
	id, _ := el.attr("id")

	var sb strings.Builder
	sentences := []absa.Sentence{}
	offset := 0
	for _, sel := range el.findAll("sentence") {
		sid, _ := sel.attr("id")
		text := sel.text()

		var polarity string
		var terms []absa.AspectTerm
		if opinionated, _ := sel.attr("opinionated"); opinionated == weiboOpinionated {
			polarity, _ = sel.attr("polarity")
			terms = a.targets(sid, text, sel)
		}

		s := absa.NewSentence(absa.Text{Text: text, Polarity: polarity, SampleID: sid}, nil, terms)
		s.StartIndexInDoc = offset
		offset += absa.RuneLen(text)
		sb.WriteString(text)
		sentences = append(sentences, s)
	}

	return absa.Document{
		Text:      absa.Text{Text: sb.String(), SampleID: id},
		Sentences: sentences,
	}
}

// targets scans the indexed target attributes of a sentence, from 1 until
// target_word_N is missing or empty. There can not be more targets than
// attributes. The end attribute is inclusive.
func (a *Weibo) targets(sid, text string, el *element) []absa.AspectTerm {
	terms := []absa.AspectTerm{}
	for n := 1; n <= el.nattrs; n++ {
		word, _ := el.attr(fmt.Sprintf("target_word_%d", n))
		if word == "" {
			break
		}

		rawBegin, _ := el.attr(fmt.Sprintf("target_begin_%d", n))
		rawEnd, _ := el.attr(fmt.Sprintf("target_end_%d", n))
		polarity, _ := el.attr(fmt.Sprintf("target_polarity_%d", n))

		begin, errBegin := strconv.Atoi(strings.TrimSpace(rawBegin))
		end, errEnd := strconv.Atoi(strings.TrimSpace(rawEnd))
		t := absa.AspectTerm{
			Term:     word,
			Polarity: polarity,
			From:     begin,
			To:       end + 1,
		}
		if errBegin != nil || errEnd != nil {
			a.deps.log(absa.Train).WithFields(logrus.Fields{
				"sample": sid,
				"term":   word,
				"from":   rawBegin,
				"to":     rawEnd,
			}).Warn("target with malformed offsets")
			t.From, t.To = absa.UnknownOffset, absa.UnknownOffset
		} else {
			a.deps.checkTerm(absa.Train, sid, text, t)
		}
		terms = append(terms, t)
	}
	return terms
}

func (a *Weibo) loadTest(ctx context.Context, dir string) ([]absa.Document, error) {
	locators, err := a.deps.Reader.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	docs := []absa.Document{}
	for _, locator := range locators {
		if path.Ext(locator) == ".ann" {
			continue
		}

		doc, err := a.testDocument(ctx, locator)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (a *Weibo) testDocument(ctx context.Context, locator string) (absa.Document, error) {
	lines, err := a.deps.Reader.ReadAllLines(ctx, locator, resource.UTF8)
	if err != nil {
		return absa.Document{}, err
	}
	lines = usableLines(lines)

	annLocator := strings.TrimSuffix(locator, path.Ext(locator)) + ".ann"
	annLines, err := a.deps.Reader.ReadAllLines(ctx, annLocator, resource.UTF8)
	if err != nil {
		return absa.Document{}, err
	}
	snippets := a.snippets(annLocator, annLines)

	var sb strings.Builder
	sentences := []absa.Sentence{}
	offset := 0
	for _, line := range lines {
		polarity := ""
		for _, snippet := range snippets {
			if strings.Contains(line, snippet) {
				polarity = absa.Other
				break
			}
		}

		s := absa.NewSentence(absa.Text{Text: line, Polarity: polarity}, nil, nil)
		s.StartIndexInDoc = offset
		offset += absa.RuneLen(line)
		sb.WriteString(line)
		sentences = append(sentences, s)
	}

	id := strings.TrimSuffix(resource.Base(locator), path.Ext(locator))
	return absa.Document{
		Text:      absa.Text{Text: sb.String(), SampleID: id},
		Sentences: sentences,
	}, nil
}

// usableLines drops the header line and everything from the first line
// containing the end marker.
func usableLines(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	lines = lines[1:]
	for i, l := range lines {
		if strings.Contains(l, weiboTextEnd) {
			return lines[:i]
		}
	}
	return lines
}

// snippets returns the opinion text of every annotation line.
func (a *Weibo) snippets(locator string, lines []string) []string {
	snippets := []string{}
	for i, l := range lines {
		if l == "" {
			continue
		}

		fields := strings.Split(l, "\t")
		if len(fields) < 3 || fields[2] == "" {
			a.deps.log(absa.Test).WithFields(logrus.Fields{
				"sample": locator,
				"line":   i + 1,
			}).Warn("skipping annotation line without opinion text")
			continue
		}
		snippets = append(snippets, fields[2])
	}
	return snippets
}
