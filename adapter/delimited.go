package adapter

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/resource"
)

// Layout selects how the columns of a delimited corpus map to documents.
type Layout int

const (
	// LayoutTextLabel rows are id, text columns. The polarity is the second
	// column of the label row at the same position in a separate file.
	LayoutTextLabel Layout = iota

	// LayoutEntities rows are id, title, content, entities, polarity, key
	// entities. Entities become categories, key entities are polarity 1.
	LayoutEntities
)

const (
	// joins the text columns of LayoutTextLabel rows
	columnSeparator = "。"

	// joins title and content of LayoutEntities rows
	contentSeparator = "content-begin。"

	entitySeparator = ";"
)

// Delimited reads CSV corpora. A row whose column count differs from the
// first row is reported but kept.
type Delimited struct {
	deps   Deps
	layout Layout
}

var _ Adapter = (*Delimited)(nil)

func NewDelimited(d Deps, layout Layout) *Delimited {
	return &Delimited{deps: d.withDefaults(), layout: layout}
}

func (a *Delimited) Load(ctx context.Context, loc Locators) (absa.Corpus, error) {
	if a.layout == LayoutTextLabel && loc.Train != "" && loc.TrainLabels == "" {
		return absa.Corpus{}, fmt.Errorf("%w: train", ErrNoLabels)
	}

	return loadPartitions(ctx, a.deps, loc, func(ctx context.Context, partition, locator string) ([]absa.Document, error) {
		rows, err := a.rows(ctx, partition, locator)
		if err != nil {
			return nil, err
		}

		if a.layout == LayoutEntities {
			return a.entities(partition, rows), nil
		}

		labels := loc.TestLabels
		if partition == absa.Train {
			labels = loc.TrainLabels
		}
		return a.textLabel(ctx, partition, rows, labels)
	})
}

// rows returns the data rows of the resource, header excluded.
func (a *Delimited) rows(ctx context.Context, partition, locator string) ([][]string, error) {
	content, err := a.deps.Reader.ReadAllContent(ctx, locator, resource.UTF8)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", locator, err)
	}

	if len(rows) == 0 {
		return rows, nil
	}

	width := len(rows[0])
	for i, row := range rows {
		if len(row) == width {
			continue
		}
		a.deps.log(partition).WithFields(logrus.Fields{
			"sample":  field(row, 0),
			"row":     i + 1,
			"columns": len(row),
			"want":    width,
		}).Warn("row column count differs from the header")
		a.deps.Metrics.RaggedRow(a.deps.Dataset)
	}

	return rows[1:], nil
}

func (a *Delimited) textLabel(ctx context.Context, partition string, rows [][]string, labelLocator string) ([]absa.Document, error) {
	var labels [][]string
	if labelLocator != "" {
		var err error
		labels, err = a.rows(ctx, partition, labelLocator)
		if err != nil {
			return nil, err
		}
	}

	docs := make([]absa.Document, 0, len(rows))
	for i, row := range rows {
		text := ""
		if len(row) > 1 {
			text = strings.Join(row[1:], columnSeparator)
		}

		polarity := ""
		switch {
		case i < len(labels):
			polarity = field(labels[i], 1)
		case labelLocator != "":
			a.deps.log(partition).WithField("sample", field(row, 0)).Warn("no label row")
		}

		docs = append(docs, absa.Document{
			Text: absa.Text{Text: text, Polarity: polarity, SampleID: field(row, 0)},
		})
	}
	return docs, nil
}

// entities builds documents whose categories are the entities of the row.
// Only train rows carry polarities, test documents are polarity 0.
func (a *Delimited) entities(partition string, rows [][]string) []absa.Document {
	docs := make([]absa.Document, 0, len(rows))
	for _, row := range rows {
		polarity := "0"
		keys := map[string]bool{}
		if partition == absa.Train {
			polarity = field(row, 4)
			for _, k := range splitEntities(field(row, 5)) {
				keys[k] = true
			}
		}

		categories := []absa.AspectCategory{}
		for _, e := range splitEntities(field(row, 3)) {
			p := "0"
			if keys[e] {
				p = "1"
			}
			categories = append(categories, absa.AspectCategory{Category: e, Polarity: p})
		}

		docs = append(docs, absa.Document{
			Text: absa.Text{
				Text:     field(row, 1) + contentSeparator + field(row, 2),
				Polarity: polarity,
				SampleID: field(row, 0),
			},
			Categories: categories,
		})
	}
	return docs
}

func splitEntities(s string) []string {
	out := []string{}
	for _, e := range strings.Split(s, entitySeparator) {
		if e == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

// field returns column i of row, empty for short rows.
func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
