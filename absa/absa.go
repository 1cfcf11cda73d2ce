package absa

import "fmt"

// Well known polarity labels. The vocabulary is defined by each corpus, these
// are the ones the reconciliation of category votes knows about.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
	Conflict = "conflict"

	// Other is assigned to sentences matched by an external opinion snippet
	Other = "other"
)

// AspectTerm is a literal span of the owning text with its own polarity.
type AspectTerm struct {
	Term     string `json:"term" msgpack:"term"`
	Polarity string `json:"polarity" msgpack:"polarity"`

	// From is the index of the first character (rune) of the term, inclusive.
	From int `json:"from" msgpack:"from"`

	// To is the index after the last character (rune) of the term, exclusive.
	To int `json:"to" msgpack:"to"`

	// Category is set when the term is also category tagged (entity#attribute)
	Category string `json:"category,omitempty" msgpack:"category,omitempty"`
}

func (t AspectTerm) String() string {
	return fmt.Sprintf("%s-%s-%d-%d-%s", t.Term, t.Polarity, t.From, t.To, t.Category)
}

// AspectCategory is a category label with polarity. It has no span.
type AspectCategory struct {
	Category string `json:"category" msgpack:"category"`
	Polarity string `json:"polarity" msgpack:"polarity"`
}

func (c AspectCategory) String() string {
	return fmt.Sprintf("%s-%s", c.Category, c.Polarity)
}

// Text is the base unit of plain classification corpora.
type Text struct {
	Text string `json:"text" msgpack:"text"`

	// Polarity is empty when the text carries no polarity
	Polarity string `json:"polarity,omitempty" msgpack:"polarity,omitempty"`
	SampleID string `json:"sample_id,omitempty" msgpack:"sample_id,omitempty"`
}

// Sentence is a sentence of a Document with its aspect annotations.
type Sentence struct {
	Text

	Categories []AspectCategory `json:"aspect_categories,omitempty" msgpack:"aspect_categories,omitempty"`
	Terms      []AspectTerm     `json:"aspect_terms,omitempty" msgpack:"aspect_terms,omitempty"`

	// StartIndexInDoc is the rune offset of the sentence in the text of its
	// document, -1 if unknown.
	StartIndexInDoc int `json:"start_index_in_doc" msgpack:"start_index_in_doc"`
}

// NewSentence returns a Sentence with an unknown document offset.
func NewSentence(text Text, categories []AspectCategory, terms []AspectTerm) Sentence {
	return Sentence{
		Text:            text,
		Categories:      categories,
		Terms:           terms,
		StartIndexInDoc: -1,
	}
}

// Document is the canonical record produced by every adapter.
//
// Categories and Terms are used by dialects that annotate the whole document
// instead of each sentence. Sentences is empty for dialects without sentence
// segmentation.
type Document struct {
	Text

	Categories []AspectCategory `json:"aspect_categories,omitempty" msgpack:"aspect_categories,omitempty"`
	Terms      []AspectTerm     `json:"aspect_terms,omitempty" msgpack:"aspect_terms,omitempty"`
	Sentences  []Sentence       `json:"absa_sentences,omitempty" msgpack:"absa_sentences,omitempty"`
}

// SentenceTexts returns the plain text of every sentence of the document.
func (d Document) SentenceTexts() []string {
	texts := make([]string, 0, len(d.Sentences))
	for _, s := range d.Sentences {
		texts = append(texts, s.Text.Text)
	}
	return texts
}

// SingleSentenceDocument wraps a sentence in a document of its own, for
// dialects that have no document level.
func SingleSentenceDocument(s Sentence) Document {
	s.StartIndexInDoc = 0
	return Document{
		Text:      Text{Text: s.Text.Text, SampleID: s.SampleID},
		Sentences: []Sentence{s},
	}
}

// Corpus is the canonical form of a dataset.
type Corpus = Partitions[Document]
