package match

import (
	"errors"
	"fmt"
	"strings"

	"github.com/revelaction/absaset/absa"
)

var ErrInvalidExpr = errors.New("invalid expression")

// Field is the part of an annotated sentence an Item is matched against.
type Field int

const (
	FieldText Field = iota
	FieldTerm
	FieldCategory
	FieldPolarity
)

var prefixes = map[string]Field{
	"term:": FieldTerm,
	"cat:":  FieldCategory,
	"pol:":  FieldPolarity,
}

// Item is a condition of an expression. It holds if any of its values
// matches, or if none does when negated.
type Item struct {
	Field   Field
	Values  []string
	Negated bool
}

func (it Item) String() string {
	var b strings.Builder
	if it.Negated {
		b.WriteString("!")
	}
	for p, f := range prefixes {
		if f == it.Field {
			b.WriteString(p)
		}
	}
	b.WriteString(strings.Join(it.Values, "|"))
	return b.String()
}

// Expr is a list of items that must all hold.
//
//	pizza cat:FOOD|DRINKS !pol:negative term:crust
//
// Bare words match the text, case insensitive. cat: matches a category
// prefix, so cat:FOOD matches FOOD#QUALITY. pol: matches the polarity of the
// text, a term or a category. term: matches a substring of a term.
type Expr []Item

// Parse parses a whitespace separated expression.
func Parse(s string) (Expr, error) {
	expr := Expr{}
	for _, word := range strings.Fields(s) {
		item := Item{Field: FieldText}

		if strings.HasPrefix(word, "!") {
			item.Negated = true
			word = strings.TrimPrefix(word, "!")
		}

		for p, f := range prefixes {
			if strings.HasPrefix(word, p) {
				item.Field = f
				word = strings.TrimPrefix(word, p)
				break
			}
		}

		for _, v := range strings.Split(word, "|") {
			if v != "" {
				item.Values = append(item.Values, v)
			}
		}

		if len(item.Values) == 0 {
			return nil, fmt.Errorf("%w: empty value in %q", ErrInvalidExpr, s)
		}

		expr = append(expr, item)
	}

	return expr, nil
}

func (e Expr) String() string {
	items := make([]string, 0, len(e))
	for _, it := range e {
		items = append(items, it.String())
	}
	return strings.Join(items, " ")
}

// SentenceMatch is a sentence of a corpus matched by an expression.
type SentenceMatch struct {
	Partition string

	DocIndex int

	// SentenceIndex is the index in the document, -1 for documents without
	// sentences.
	SentenceIndex int

	SampleID string

	Sentence absa.Sentence

	// Terms matched by term: and pol: items. Used to highlight.
	Terms []absa.AspectTerm
}

// Matcher matches the sentences of a corpus against an expression.
type Matcher struct {
	Expr Expr
}

func NewMatcher(expr Expr) *Matcher {
	return &Matcher{Expr: expr}
}

// Match returns the matching sentences of the present partitions, in
// corpus order. Sentences inherit the labels of their document. Documents
// without sentences are matched as a whole.
func (m *Matcher) Match(c absa.Corpus) []*SentenceMatch {
	matches := []*SentenceMatch{}

	c.Each(func(partition string, docs []absa.Document) {
		for di, doc := range docs {
			if len(doc.Sentences) == 0 {
				s := absa.NewSentence(doc.Text, doc.Categories, doc.Terms)
				if terms, ok := m.MatchSentence(s); ok {
					matches = append(matches, &SentenceMatch{
						Partition:     partition,
						DocIndex:      di,
						SentenceIndex: -1,
						SampleID:      doc.SampleID,
						Sentence:      s,
						Terms:         terms,
					})
				}
				continue
			}

			for si, s := range doc.Sentences {
				inherited := s
				inherited.Categories = append(append([]absa.AspectCategory{}, doc.Categories...), s.Categories...)
				if inherited.Polarity == "" {
					inherited.Polarity = doc.Polarity
				}

				terms, ok := m.MatchSentence(inherited)
				if !ok {
					continue
				}

				id := s.SampleID
				if id == "" {
					id = doc.SampleID
				}
				matches = append(matches, &SentenceMatch{
					Partition:     partition,
					DocIndex:      di,
					SentenceIndex: si,
					SampleID:      id,
					Sentence:      s,
					Terms:         terms,
				})
			}
		}
	})

	return matches
}

// MatchSentence reports whether every item holds for s, with the terms
// matched by the non negated items.
func (m *Matcher) MatchSentence(s absa.Sentence) ([]absa.AspectTerm, bool) {
	matched := []absa.AspectTerm{}

	for _, item := range m.Expr {
		terms, ok := itemMatch(s, item)
		if ok == item.Negated {
			return nil, false
		}
		if !item.Negated {
			matched = appendNew(matched, terms)
		}
	}

	return matched, true
}

// itemMatch reports whether any value of item matches s, ignoring negation.
func itemMatch(s absa.Sentence, item Item) ([]absa.AspectTerm, bool) {
	var terms []absa.AspectTerm
	found := false

	for _, v := range item.Values {
		switch item.Field {
		case FieldText:
			if strings.Contains(strings.ToLower(s.Text.Text), strings.ToLower(v)) {
				found = true
			}

		case FieldTerm:
			for _, t := range s.Terms {
				if strings.Contains(strings.ToLower(t.Term), strings.ToLower(v)) {
					terms = append(terms, t)
					found = true
				}
			}

		case FieldCategory:
			for _, c := range s.Categories {
				if hasPrefixFold(c.Category, v) {
					found = true
				}
			}
			for _, t := range s.Terms {
				if t.Category != "" && hasPrefixFold(t.Category, v) {
					terms = append(terms, t)
					found = true
				}
			}

		case FieldPolarity:
			if s.Polarity == v {
				found = true
			}
			for _, c := range s.Categories {
				if c.Polarity == v {
					found = true
				}
			}
			for _, t := range s.Terms {
				if t.Polarity == v {
					terms = append(terms, t)
					found = true
				}
			}
		}
	}

	return terms, found
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func appendNew(terms, add []absa.AspectTerm) []absa.AspectTerm {
OUTER:
	for _, t := range add {
		for _, have := range terms {
			if have == t {
				continue OUTER
			}
		}
		terms = append(terms, t)
	}
	return terms
}
