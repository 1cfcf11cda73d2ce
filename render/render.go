package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/derive"
	"github.com/revelaction/absaset/match"
	"github.com/revelaction/absaset/stat"
)

const Defaultformat = "all"

var (
	Black   = "\033[1;30m"
	Red     = "\033[1;31m"
	Green   = "\033[1;32m"
	Yellow  = "\033[0;33m"
	Purple  = "\033[1;34m"
	Magenta = "\033[1;35m"
	Teal    = "\033[1;36m"
	Gray    = "\033[0;37m"
	White   = "\033[1;37m"
	Off     = "\033[0m"
	//Yellow256  = "\033[1;38;5;202m"
	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Green256  = "\033[1;38;5;70m"
	ClearLine = "\033[K"
)

// polarityColors colors the aspect terms by polarity. Unknown polarities use
// Purple.
var polarityColors = map[string]string{
	absa.Positive: Green256,
	absa.Negative: Red,
	absa.Neutral:  Yellow256,
	absa.Conflict: Magenta,
	absa.Other:    Teal,
}

// SupportedFormats returns the formats in NextFormat order.
//
// all: the text and its labels
// text: the text, terms highlighted
// labels: only the labels
func SupportedFormats() []string {
	return []string{"all", "text", "labels"}
}

type Renderer struct {
	W io.Writer

	HasColor bool

	HasPrefix bool

	Format string
}

func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	return &Renderer{W: w, Format: Defaultformat}
}

// Document renders the sentences of a document of the partition. Documents
// without sentences render their own text.
func (r *Renderer) Document(partition string, idx int, doc absa.Document) {
	prefix := r.prefix(partition, idx, doc.SampleID)

	if len(doc.Sentences) == 0 {
		r.text(prefix, doc.Text, doc.Categories, doc.Terms)
		return
	}

	// document level labels
	if len(doc.Categories) > 0 || len(doc.Terms) > 0 || doc.Polarity != "" {
		r.line(prefix, "", r.Labels(doc.Polarity, doc.Categories, doc.Terms))
	}

	for _, s := range doc.Sentences {
		r.text(prefix, s.Text, s.Categories, s.Terms)
	}
}

// Match renders matched sentences. Only the matched terms are highlighted,
// all of them if the expression matched none.
func (r *Renderer) Match(results []*match.SentenceMatch) {
	for _, m := range results {
		terms := m.Terms
		if len(terms) == 0 {
			terms = m.Sentence.Terms
		}

		s := m.Sentence
		r.line(r.prefix(m.Partition, m.DocIndex, m.SampleID), r.highlight(s.Text.Text, terms), r.Labels(s.Polarity, s.Categories, s.Terms))
	}
}

// Sentence renders a sentence with the given prefix.
func (r *Renderer) Sentence(s absa.Sentence, prefix string) {
	r.text(prefix, s.Text, s.Categories, s.Terms)
}

// Sample renders a derived sample.
func (r *Renderer) Sample(partition string, idx int, s derive.Sample) {
	prefix := r.prefix(partition, idx, s.ID)

	labels := r.Labels(s.Polarity, s.Categories, s.Terms)
	if len(s.Classes) > 0 {
		labels = strings.TrimSpace(labels + " " + strings.Join(s.Classes, " "))
	}

	r.line(prefix, r.highlight(s.Content, s.Terms), labels)
}

func (r *Renderer) text(prefix string, t absa.Text, categories []absa.AspectCategory, terms []absa.AspectTerm) {
	r.line(prefix, r.highlight(t.Text, terms), r.Labels(t.Polarity, categories, terms))
}

func (r *Renderer) line(prefix, text, labels string) {
	text = strings.ReplaceAll(text, "\n", " ")

	var out string
	switch r.Format {
	case "text":
		out = text
	case "labels":
		out = labels
	default:
		out = text
		if labels != "" {
			out = strings.TrimSpace(text + " " + r.color(Gray, "⟶ "+labels))
		}
	}

	fmt.Fprintf(r.W, "%s%s\n", prefix, out)
}

// SentenceString returns the text of s with its aspect terms highlighted.
func (r *Renderer) SentenceString(s absa.Sentence) string {
	return strings.ReplaceAll(r.highlight(s.Text.Text, s.Terms), "\n", " ")
}

// Labels returns the labels of a text in the form
//
//	polarity [CATEGORY:polarity] term(from,to):polarity
func (r *Renderer) Labels(polarity string, categories []absa.AspectCategory, terms []absa.AspectTerm) string {
	parts := []string{}
	if polarity != "" {
		parts = append(parts, polarity)
	}
	for _, c := range categories {
		parts = append(parts, fmt.Sprintf("[%s:%s]", c.Category, c.Polarity))
	}
	for _, t := range terms {
		part := fmt.Sprintf("%s(%d,%d):%s", t.Term, t.From, t.To, t.Polarity)
		if t.Category != "" {
			part += "#" + t.Category
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

// highlight colors the spans of the terms in text. Terms with offsets out of
// the text, or overlapping a previous term, are not highlighted.
func (r *Renderer) highlight(text string, terms []absa.AspectTerm) string {
	if !r.HasColor || len(terms) == 0 {
		return text
	}

	sorted := append([]absa.AspectTerm{}, terms...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })

	runes := []rune(text)
	var str strings.Builder
	cursor := 0
	for _, t := range sorted {
		if t.From < cursor || t.From >= t.To || t.To > len(runes) {
			continue
		}
		str.WriteString(string(runes[cursor:t.From]))
		str.WriteString(polarityColor(t.Polarity) + string(runes[t.From:t.To]) + Off)
		cursor = t.To
	}
	str.WriteString(string(runes[cursor:]))

	return str.String()
}

func polarityColor(polarity string) string {
	if c, ok := polarityColors[polarity]; ok {
		return c
	}
	return Purple
}

func (r *Renderer) color(c, s string) string {
	if !r.HasColor {
		return s
	}
	return c + s + Off
}

func (r *Renderer) prefix(partition string, idx int, sampleID string) string {
	if !r.HasPrefix {
		return ""
	}
	return fmt.Sprintf("[%5s %5d %s] ✍  ", partition, idx, r.title(sampleID))
}

func (r *Renderer) title(id string) string {
	var part string
	if len([]rune(id)) <= 20 {
		part = fmt.Sprintf("%-20s", id)
	} else {
		part = string([]rune(id)[:20])
	}

	return r.color(Grey256, part)
}

// Stats renders the statistics of a partition.
func (r *Renderer) Stats(partition string, s stat.Stats) {
	fmt.Fprintf(r.W, "%s: %d documents, %d sentences, %d terms, %d categories, %d chars per sentence\n",
		r.color(Yellow256, partition), s.NumDocuments, s.NumSentences, s.NumTerms, s.NumCategories, s.CharsPerSentenceMean)

	if s.NumSpanMismatches > 0 {
		fmt.Fprintf(r.W, "  %s\n", r.color(Red, fmt.Sprintf("%d terms do not match their span", s.NumSpanMismatches)))
	}

	r.Distribution("polarities", stat.Sorted(s.PolarityDis))
	r.Distribution("text polarities", stat.Sorted(s.TextPolarityDis))
	r.Distribution("categories", stat.Sorted(s.CategoryDis))
}

// Distribution renders label counts, one per line. Empty distributions are
// not rendered.
func (r *Renderer) Distribution(title string, counts []stat.Count) {
	if len(counts) == 0 {
		return
	}

	fmt.Fprintf(r.W, "  %s\n", title)
	for _, c := range counts {
		label := c.Label
		if label == "" {
			label = `""`
		}
		fmt.Fprintf(r.W, "    [%5d] %s\n", c.N, label)
	}
}

// NextFormat sets the Renderer Format option to a different one, following
// the SupportedFormats() order.
func (r *Renderer) NextFormat() {

	supported := SupportedFormats()
	for i, format := range supported {
		if format == r.Format {
			switch i {
			case len(supported) - 1:
				r.Format = supported[0]
			default:
				r.Format = supported[i+1]
			}

			return
		}
	}

	r.Format = supported[0]
}

func (r *Renderer) NextPrefix() {

	// toggle
	r.HasPrefix = !r.HasPrefix
}
