package adapter

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/resource"
)

// Markup reads nested markup dialects described by a Schema.
type Markup struct {
	deps   Deps
	schema Schema
}

var _ Adapter = (*Markup)(nil)

func NewMarkup(d Deps, s Schema) *Markup {
	return &Markup{deps: d.withDefaults(), schema: s}
}

func (a *Markup) Load(ctx context.Context, loc Locators) (absa.Corpus, error) {
	return loadPartitions(ctx, a.deps, loc, a.load)
}

func (a *Markup) load(ctx context.Context, partition, locator string) ([]absa.Document, error) {
	content, err := a.deps.Reader.ReadAllContent(ctx, locator, resource.UTF8)
	if err != nil {
		return nil, err
	}

	root, err := parseMarkup(content)
	if err != nil {
		return nil, err
	}

	return a.documents(partition, root), nil
}

func (a *Markup) documents(partition string, root *element) []absa.Document {
	docs := []absa.Document{}

	if a.schema.Document == "" {
		for _, el := range root.findAll(a.schema.Sentence) {
			s := a.sentence(partition, el, a.schema.Scope == ScopeSentence)
			doc := absa.SingleSentenceDocument(s)
			if a.schema.Scope == ScopeDocument {
				doc.Categories, doc.Terms = a.annotations(partition, doc.SampleID, doc.Text.Text, el)
			}
			docs = append(docs, doc)
		}
		return docs
	}

	for _, el := range root.findAll(a.schema.Document) {
		docs = append(docs, a.document(partition, el))
	}
	return docs
}

// document builds a document whose text is the concatenation of its
// sentences.
func (a *Markup) document(partition string, el *element) absa.Document {
	id, _ := el.attr(a.schema.DocumentID)

	var sb strings.Builder
	sentences := []absa.Sentence{}
	offset := 0
	for _, sel := range el.findAll(a.schema.Sentence) {
		s := a.sentence(partition, sel, a.schema.Scope == ScopeSentence)
		s.StartIndexInDoc = offset
		offset += absa.RuneLen(s.Text.Text)
		sb.WriteString(s.Text.Text)
		sentences = append(sentences, s)
	}

	doc := absa.Document{
		Text:      absa.Text{Text: sb.String(), SampleID: id},
		Sentences: sentences,
	}
	if a.schema.Scope == ScopeDocument {
		doc.Categories, doc.Terms = a.annotations(partition, id, doc.Text.Text, el)
	}
	return doc
}

func (a *Markup) sentence(partition string, el *element, annotated bool) absa.Sentence {
	id, _ := el.attr(a.schema.SentenceID)

	text := ""
	if t := el.find(a.schema.Text); a.schema.Text != "" && t != nil {
		text = t.text()
	} else {
		text = el.text()
	}

	var categories []absa.AspectCategory
	var terms []absa.AspectTerm
	if annotated {
		categories, terms = a.annotations(partition, id, text, el)
	}

	return absa.NewSentence(absa.Text{Text: text, SampleID: id}, categories, terms)
}

// annotations collects the annotation elements under scope, in document
// order. text is the text the term offsets refer to.
func (a *Markup) annotations(partition, id, text string, scope *element) ([]absa.AspectCategory, []absa.AspectTerm) {
	categories := []absa.AspectCategory{}
	terms := []absa.AspectTerm{}

	for _, an := range scope.findAll(a.schema.Annotations...) {
		category, _ := an.attr(a.schema.Category)
		polarity, _ := an.attr(a.schema.Polarity)

		if !an.hasAttr(a.schema.Term) {
			categories = append(categories, absa.AspectCategory{Category: category, Polarity: polarity})
			continue
		}

		term, _ := an.attr(a.schema.Term)
		rawFrom, _ := an.attr(a.schema.From)
		rawTo, _ := an.attr(a.schema.To)
		from, errFrom := strconv.Atoi(strings.TrimSpace(rawFrom))
		to, errTo := strconv.Atoi(strings.TrimSpace(rawTo))
		t := absa.AspectTerm{
			Term:     term,
			Polarity: polarity,
			From:     from,
			To:       to,
			Category: category,
		}
		if errFrom != nil || errTo != nil {
			a.deps.log(partition).WithFields(logrus.Fields{
				"sample": id,
				"term":   term,
				"from":   rawFrom,
				"to":     rawTo,
			}).Warn("aspect term with malformed offsets")
			t.From, t.To = absa.UnknownOffset, absa.UnknownOffset
		} else {
			a.deps.checkTerm(partition, id, text, t)
		}
		terms = append(terms, t)
	}

	return categories, terms
}
