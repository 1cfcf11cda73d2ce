package derive

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/revelaction/absaset/absa"
)

// ErrUnknownTask is returned for task names the engine does not know.
var ErrUnknownTask = errors.New("unknown task")

// Task selects the kind of samples to derive.
type Task string

const (
	// TaskTerm labels are the aspect terms, with their polarities.
	TaskTerm Task = "term"

	// TaskCategory labels are (category, polarity) pairs.
	TaskCategory Task = "category"

	// TaskCategoryDetection labels are the categories only.
	TaskCategoryDetection Task = "category-detection"

	// TaskEntityDetection labels are the entity part of the categories,
	// before the '#'.
	TaskEntityDetection Task = "entity-detection"

	// TaskSentiment label is the polarity of the text.
	TaskSentiment Task = "sentiment"
)

// Tasks returns all tasks.
func Tasks() []Task {
	return []Task{TaskTerm, TaskCategory, TaskCategoryDetection, TaskEntityDetection, TaskSentiment}
}

// ParseTask returns the task named s.
func ParseTask(s string) (Task, error) {
	for _, t := range Tasks() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTask, s)
}

// Scope is the unit a sample is made of.
type Scope int

const (
	ScopeSentence Scope = iota
	ScopeDocument
)

func (s Scope) String() string {
	if s == ScopeDocument {
		return "document"
	}
	return "sentence"
}

// Source tells where category labels come from.
type Source int

const (
	// SourceCategories reads the aspect categories of the unit.
	SourceCategories Source = iota

	// SourceTerms reads the categories of the aspect terms of the unit.
	// Several terms may vote for the same category.
	SourceTerms
)

// Rules are the per dataset choices of a derivation.
type Rules struct {
	Scope  Scope
	Source Source

	// DropEmpty drops samples without labels.
	DropEmpty bool

	// CollapseNewlines replaces runs of line breaks by one space, instead of
	// each one. It does not apply to the term task.
	CollapseNewlines bool
}

// Sample is a derived supervised sample. Which label field is set depends on
// the task.
type Sample struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`

	Terms      []absa.AspectTerm     `json:"terms,omitempty"`
	Categories []absa.AspectCategory `json:"categories,omitempty"`
	Classes    []string              `json:"classes,omitempty"`
	Polarity   string                `json:"polarity,omitempty"`
}

// Empty reports whether the sample has no label.
func (s Sample) Empty() bool {
	return len(s.Terms) == 0 && len(s.Categories) == 0 && len(s.Classes) == 0 && s.Polarity == ""
}

// Result holds the derived samples and the sorted label vocabularies.
type Result struct {
	Task    Task
	Samples absa.Partitions[Sample]

	// Categories is empty for tasks without categories
	Categories []string

	// Polarities is empty for detection tasks
	Polarities []string

	// Dropped counts the samples dropped for an empty label, per partition
	Dropped map[string]int
}

var (
	lineBreak     = regexp.MustCompile(`[\r\n]`)
	lineBreakRuns = regexp.MustCompile(`[\r\n]+`)
)

// Derive turns the corpus into samples for task. Absent partitions stay
// absent. The corpus is not modified.
func Derive(c absa.Corpus, task Task, rules Rules) (Result, error) {
	if _, err := ParseTask(string(task)); err != nil {
		return Result{}, err
	}

	categories := map[string]bool{}
	polarities := map[string]bool{}
	dropped := map[string]int{}

	samples, err := absa.Map(c, func(name string, docs []absa.Document) ([]Sample, error) {
		out := []Sample{}
		for _, u := range units(docs, rules.Scope) {
			s := Sample{ID: u.id, Content: normalize(u.text, task, rules)}

			switch task {
			case TaskTerm:
				s.Terms = append([]absa.AspectTerm{}, u.terms...)
				for _, t := range s.Terms {
					polarities[t.Polarity] = true
				}

			case TaskCategory:
				if rules.Source == SourceTerms {
					s.Categories = Reconcile(u.terms)
				} else {
					s.Categories = append([]absa.AspectCategory{}, u.categories...)
				}
				for _, ac := range s.Categories {
					categories[ac.Category] = true
					polarities[ac.Polarity] = true
				}

			case TaskCategoryDetection, TaskEntityDetection:
				s.Classes = classes(u, rules.Source, task == TaskEntityDetection)
				for _, cl := range s.Classes {
					categories[cl] = true
				}

			case TaskSentiment:
				s.Polarity = u.polarity
				if s.Polarity != "" {
					polarities[s.Polarity] = true
				}
			}

			if rules.DropEmpty && s.Empty() {
				dropped[name]++
				continue
			}
			out = append(out, s)
		}
		return out, nil
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Task:       task,
		Samples:    samples,
		Categories: sorted(categories),
		Polarities: sorted(polarities),
		Dropped:    dropped,
	}, nil
}

// unit is the text a sample is derived from, a sentence or a document.
type unit struct {
	id         string
	text       string
	polarity   string
	categories []absa.AspectCategory
	terms      []absa.AspectTerm
}

func units(docs []absa.Document, scope Scope) []unit {
	out := []unit{}
	for _, d := range docs {
		if scope == ScopeDocument {
			out = append(out, unit{
				id:         d.SampleID,
				text:       d.Text.Text,
				polarity:   d.Polarity,
				categories: d.Categories,
				terms:      d.Terms,
			})
			continue
		}

		for _, s := range d.Sentences {
			out = append(out, unit{
				id:         s.SampleID,
				text:       s.Text.Text,
				polarity:   s.Polarity,
				categories: s.Categories,
				terms:      s.Terms,
			})
		}
	}
	return out
}

// normalize removes line breaks for the term task and replaces them with
// spaces for all the others.
func normalize(text string, task Task, rules Rules) string {
	if task == TaskTerm {
		return lineBreak.ReplaceAllString(text, "")
	}
	if rules.CollapseNewlines {
		return lineBreakRuns.ReplaceAllString(text, " ")
	}
	return lineBreak.ReplaceAllString(text, " ")
}

// classes returns the distinct categories of u in first seen order.
func classes(u unit, src Source, entity bool) []string {
	var raw []string
	if src == SourceTerms {
		for _, t := range u.terms {
			raw = append(raw, t.Category)
		}
	} else {
		for _, c := range u.categories {
			raw = append(raw, c.Category)
		}
	}

	seen := map[string]bool{}
	out := []string{}
	for _, c := range raw {
		if entity {
			c, _, _ = strings.Cut(c, "#")
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Reconcile groups the polarities of terms by category and resolves each
// group to one polarity with Vote. Categories keep their first seen order.
func Reconcile(terms []absa.AspectTerm) []absa.AspectCategory {
	order := []string{}
	votes := map[string][]string{}
	for _, t := range terms {
		if _, ok := votes[t.Category]; !ok {
			order = append(order, t.Category)
		}
		votes[t.Category] = append(votes[t.Category], t.Polarity)
	}

	out := make([]absa.AspectCategory, 0, len(order))
	for _, c := range order {
		out = append(out, absa.AspectCategory{Category: c, Polarity: Vote(votes[c])})
	}
	return out
}

// Vote resolves the polarities voted for one category:
//
//	one distinct polarity               -> that polarity
//	positive and negative, or conflict  -> conflict
//	positive and neutral                -> positive
//	anything else                       -> negative
//
// The checks run in this order. The result does not depend on the order of
// the votes.
func Vote(polarities []string) string {
	set := map[string]bool{}
	for _, p := range polarities {
		set[p] = true
	}

	if len(set) == 1 {
		return polarities[0]
	}

	switch {
	case set[absa.Positive] && set[absa.Negative], set[absa.Conflict]:
		return absa.Conflict
	case set[absa.Positive] && set[absa.Neutral]:
		return absa.Positive
	}
	return absa.Negative
}

func sorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
