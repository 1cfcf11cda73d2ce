package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/query"
	"github.com/revelaction/absaset/render"
)

func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "no-color", Usage: "do not color the aspect terms"},
		&cli.BoolFlag{Name: "no-prefix", Usage: "do not prefix the lines with the partition and index"},
		&cli.StringFlag{Name: "format", Value: render.Defaultformat, Usage: "output `FORMAT`: all, text or labels"},
		snapshotFlag(),
	}
}

func newRenderer(c *cli.Context, ui UI) (*render.Renderer, error) {
	format := c.String("format")
	valid := false
	for _, f := range render.SupportedFormats() {
		if f == format {
			valid = true
		}
	}
	if !valid {
		return nil, fmt.Errorf("unknown format %q", format)
	}

	r := render.NewRenderer(ui.Out)
	r.HasColor = !c.Bool("no-color")
	r.HasPrefix = !c.Bool("no-prefix")
	r.Format = format
	return r, nil
}

func showCommand(e *env, ui UI) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "print the documents of a partition",
		ArgsUsage: "DATASET",
		Flags: append(renderFlags(),
			&cli.StringFlag{Name: "partition", Aliases: []string{"p"}, Value: absa.Train, Usage: "`PARTITION` to show: train, dev or test"},
			&cli.IntFlag{Name: "start", Usage: "index of the first document"},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 10, Usage: "number of documents, 0 for all"},
		),
		Action: func(c *cli.Context) error {
			name, err := requireArg(c, 0, "dataset")
			if err != nil {
				return err
			}
			r, err := newRenderer(c, ui)
			if err != nil {
				return err
			}

			corpus, err := e.corpus(c, name, c.String("snapshot"))
			if err != nil {
				return err
			}

			partition := c.String("partition")
			part := corpus.Get(partition)
			if !part.IsPresent() {
				return fmt.Errorf("dataset %s has no %s partition", name, partition)
			}

			docs := part.Items()
			start := c.Int("start")
			if start < 0 || start > len(docs) {
				return fmt.Errorf("start %d out of range [0, %d]", start, len(docs))
			}
			end := len(docs)
			if n := c.Int("count"); n > 0 && start+n < end {
				end = start + n
			}

			for i := start; i < end; i++ {
				r.Document(partition, i, docs[i])
			}
			return nil
		},
	}
}

func browseCommand(e *env, ui UI) *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "query the sentences of a dataset interactively",
		ArgsUsage: "DATASET",
		Flags:     renderFlags(),
		Action: func(c *cli.Context) error {
			name, err := requireArg(c, 0, "dataset")
			if err != nil {
				return err
			}
			r, err := newRenderer(c, ui)
			if err != nil {
				return err
			}

			corpus, err := e.corpus(c, name, c.String("snapshot"))
			if err != nil {
				return err
			}

			h := query.NewHandler(corpus, r)
			h.Out = ui.Out
			return h.Run()
		},
	}
}
