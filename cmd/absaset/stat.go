package main

import (
	"github.com/urfave/cli/v2"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/render"
	"github.com/revelaction/absaset/stat"
)

func snapshotFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "snapshot",
		Usage: "read the corpus from the snapshot store at `PATH` instead of the raw resources",
	}
}

func statCommand(e *env, ui UI) *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "print the statistics of each partition of a dataset",
		ArgsUsage: "DATASET",
		Flags: []cli.Flag{
			snapshotFlag(),
			&cli.BoolFlag{Name: "no-color", Usage: "do not color the output"},
		},
		Action: func(c *cli.Context) error {
			name, err := requireArg(c, 0, "dataset")
			if err != nil {
				return err
			}

			corpus, err := e.corpus(c, name, c.String("snapshot"))
			if err != nil {
				return err
			}

			r := render.NewRenderer(ui.Out)
			r.HasColor = !c.Bool("no-color")

			corpus.Each(func(partition string, docs []absa.Document) {
				hdl := stat.NewHandler()
				for _, doc := range docs {
					hdl.Aggregate(doc)
				}
				r.Stats(partition, hdl.Get())
			})
			return nil
		},
	}
}
