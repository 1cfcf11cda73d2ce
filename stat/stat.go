package stat

import (
	"sort"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/derive"
)

type Handler struct {
	stats Stats
	chars int
}

type Stats struct {
	NumDocuments  int
	NumSentences  int
	NumTerms      int
	NumCategories int

	// Terms whose offsets do not select their text
	NumSpanMismatches int

	CharsPerSentenceMean int

	// Polarities of aspect terms and categories
	PolarityDis map[string]int

	// Polarities of documents and sentences
	TextPolarityDis map[string]int

	CategoryDis map[string]int
}

func (h *Handler) Get() Stats {
	return h.stats
}

func NewHandler() *Handler {
	stats := Stats{
		PolarityDis:     map[string]int{},
		TextPolarityDis: map[string]int{},
		CategoryDis:     map[string]int{},
	}
	return &Handler{
		stats: stats,
	}
}

func (h *Handler) Aggregate(doc absa.Document) {
	h.stats.NumDocuments++
	h.text(doc.Text)
	h.annotations(doc.Text.Text, doc.Categories, doc.Terms)

	for _, s := range doc.Sentences {
		h.stats.NumSentences++
		h.chars += absa.RuneLen(s.Text.Text)
		h.text(s.Text)
		h.annotations(s.Text.Text, s.Categories, s.Terms)
	}

	if h.stats.NumSentences > 0 {
		h.stats.CharsPerSentenceMean = h.chars / h.stats.NumSentences
	}
}

func (h *Handler) text(t absa.Text) {
	if t.Polarity != "" {
		h.stats.TextPolarityDis[t.Polarity]++
	}
}

func (h *Handler) annotations(text string, categories []absa.AspectCategory, terms []absa.AspectTerm) {
	for _, c := range categories {
		h.stats.NumCategories++
		h.stats.PolarityDis[c.Polarity]++
		h.stats.CategoryDis[c.Category]++
	}

	for _, t := range terms {
		h.stats.NumTerms++
		h.stats.PolarityDis[t.Polarity]++
		if t.Category != "" {
			h.stats.CategoryDis[t.Category]++
		}
		if !t.SpanMatches(text) {
			h.stats.NumSpanMismatches++
		}
	}
}

// Count is a label with its number of occurrences.
type Count struct {
	Label string
	N     int
}

// Sorted returns the distribution ordered by label.
func Sorted(dis map[string]int) []Count {
	out := make([]Count, 0, len(dis))
	for l, n := range dis {
		out = append(out, Count{Label: l, N: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Categories counts the category labels of samples.
func Categories(samples []derive.Sample) map[string]int {
	dis := map[string]int{}
	for _, s := range samples {
		for _, c := range s.Categories {
			dis[c.Category]++
		}
		for _, c := range s.Classes {
			dis[c]++
		}
	}
	return dis
}

// Polarities counts the polarity labels of samples.
func Polarities(samples []derive.Sample) map[string]int {
	dis := map[string]int{}
	for _, s := range samples {
		for _, t := range s.Terms {
			dis[t.Polarity]++
		}
		for _, c := range s.Categories {
			dis[c.Polarity]++
		}
		if s.Polarity != "" {
			dis[s.Polarity]++
		}
	}
	return dis
}
