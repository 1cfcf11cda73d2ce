package render

import (
	"encoding/json"
	"io"

	"github.com/revelaction/absaset/derive"
)

// Vocabulary is the label vocabulary written next to the samples of a task.
type Vocabulary struct {
	Task       derive.Task `json:"task"`
	Categories []string    `json:"categories"`
	Polarities []string    `json:"polarities"`
}

// JSONRenderer writes derived samples as JSON lines to a writer.
type JSONRenderer struct {
	W io.Writer
}

// NewJSONRenderer creates a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{W: w}
}

// Render writes one JSON object per sample and line.
func (r *JSONRenderer) Render(samples []derive.Sample) error {
	enc := json.NewEncoder(r.W)
	enc.SetEscapeHTML(false)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}

// Vocabulary writes the vocabularies of res as an indented JSON object.
func (r *JSONRenderer) Vocabulary(res derive.Result) error {
	v := Vocabulary{
		Task:       res.Task,
		Categories: res.Categories,
		Polarities: res.Polarities,
	}
	if v.Categories == nil {
		v.Categories = []string{}
	}
	if v.Polarities == nil {
		v.Polarities = []string{}
	}

	enc := json.NewEncoder(r.W)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	return enc.Encode(v)
}
