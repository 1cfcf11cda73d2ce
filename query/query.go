package query

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/match"
	"github.com/revelaction/absaset/render"
)

const (
	completionThreshold = 2

	// defaultLimit of rendered sentences per query
	defaultLimit = 200
)

// Handler runs the browse REPL over a loaded corpus.
type Handler struct {
	Corpus   absa.Corpus
	Renderer *render.Renderer
	Out      io.Writer

	// Limit of rendered sentences per query, 0 for no limit
	Limit int

	suggestions []prompt.Suggest
}

func NewHandler(c absa.Corpus, r *render.Renderer) *Handler {
	return &Handler{
		Corpus:      c,
		Renderer:    r,
		Out:         os.Stdout,
		Limit:       defaultLimit,
		suggestions: vocabulary(c),
	}
}

func (h *Handler) Run() error {

	fmt.Fprintln(h.Out, "🔑 Ctrl+X: Toggle prefix, Ctrl+F: next Format, 🔧 quit")

	// initialize prompt history
	history := []string{}

	for {

		in := prompt.Input("      🔖 ", h.completer,
			prompt.OptionTitle("absaset browse"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(12),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlF,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextFormat()
					fmt.Fprintln(h.Out, "Format set to: "+h.Renderer.Format)
				}}),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlX,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextPrefix()
					fmt.Fprintln(h.Out, "Prefix set to "+fmt.Sprintf("%t", h.Renderer.HasPrefix))
				}}),
		)

		if strings.TrimSpace(in) == "quit" {
			return nil
		}

		history = append(history, in)

		if _, err := h.Query(in); err != nil {
			fmt.Fprintf(h.Out, "✍  %s\n", err)
		}
	}
}

// Query matches the corpus against the expression in and renders the
// matches. It returns the number of matches, which may be more than the
// rendered ones.
func (h *Handler) Query(in string) (int, error) {
	expr, err := match.Parse(in)
	if err != nil {
		return 0, err
	}

	results := match.NewMatcher(expr).Match(h.Corpus)
	n := len(results)
	if h.Limit > 0 && n > h.Limit {
		results = results[:h.Limit]
	}

	h.Renderer.Match(results)
	if len(results) < n {
		fmt.Fprintf(h.Out, "✍  %d of %d sentences\n", len(results), n)
	}

	return n, nil
}

func (h *Handler) completer(in prompt.Document) []prompt.Suggest {
	return h.Suggest(in.GetWordBeforeCursor())
}

// Suggest completes the word being typed with the categories, polarities
// and terms of the corpus.
func (h *Handler) Suggest(word string) []prompt.Suggest {
	s := []prompt.Suggest{}

	word = strings.TrimPrefix(word, "!")
	if len(word) < completionThreshold {
		return s
	}

	for _, sg := range h.suggestions {
		if strings.HasPrefix(strings.ToLower(sg.Text), strings.ToLower(word)) {
			s = append(s, sg)
		}
	}

	return s
}

// vocabulary returns the field prefixed labels of the corpus, sorted.
func vocabulary(c absa.Corpus) []prompt.Suggest {
	seen := map[string]string{}
	add := func(text, desc string) {
		if _, ok := seen[text]; !ok {
			seen[text] = desc
		}
	}

	c.Each(func(_ string, docs []absa.Document) {
		for _, doc := range docs {
			labels(doc.Text, doc.Categories, doc.Terms, add)
			for _, s := range doc.Sentences {
				labels(s.Text, s.Categories, s.Terms, add)
			}
		}
	})

	texts := make([]string, 0, len(seen))
	for t := range seen {
		texts = append(texts, t)
	}
	sort.Strings(texts)

	s := make([]prompt.Suggest, 0, len(texts))
	for _, t := range texts {
		s = append(s, prompt.Suggest{Text: t, Description: seen[t]})
	}
	return s
}

func labels(t absa.Text, categories []absa.AspectCategory, terms []absa.AspectTerm, add func(text, desc string)) {
	if t.Polarity != "" {
		add("pol:"+t.Polarity, "🔖 polarity")
	}
	for _, c := range categories {
		add("cat:"+c.Category, "🔖 category")
		add("pol:"+c.Polarity, "🔖 polarity")
	}
	for _, tm := range terms {
		// terms with spaces can not be typed as one word
		if tm.Term != "" && !strings.ContainsAny(tm.Term, " \t\n") {
			add("term:"+tm.Term, "🔖 term")
		}
		add("pol:"+tm.Polarity, "🔖 polarity")
		if tm.Category != "" {
			add("cat:"+tm.Category, "🔖 category")
		}
	}
}
