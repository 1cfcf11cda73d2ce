package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/absaset/derive"
	"github.com/revelaction/absaset/render"
)

const vocabularyFile = "vocabulary.json"

func deriveCommand(e *env, ui UI) *cli.Command {
	return &cli.Command{
		Name:      "derive",
		Usage:     "derive the samples of a task and write them as JSON lines",
		ArgsUsage: "DATASET TASK",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Usage:    "output `DIR`, one JSON lines file per partition",
				Required: true,
			},
			snapshotFlag(),
		},
		Action: func(c *cli.Context) error {
			name, err := requireArg(c, 0, "dataset")
			if err != nil {
				return err
			}
			arg, err := requireArg(c, 1, "task")
			if err != nil {
				return err
			}
			task, err := derive.ParseTask(arg)
			if err != nil {
				return err
			}

			var res derive.Result
			if snapshot := c.String("snapshot"); snapshot != "" {
				corpus, err := e.corpus(c, name, snapshot)
				if err != nil {
					return err
				}
				res, err = e.pipeline.DeriveCorpus(name, corpus, task)
				if err != nil {
					return err
				}
			} else {
				res, err = e.pipeline.Derive(c.Context, name, task)
				if err != nil {
					return err
				}
			}

			return writeResult(c.String("out"), res, ui)
		},
	}
}

// writeResult writes a file per present partition and the vocabularies to
// dir.
func writeResult(dir string, res derive.Result, ui UI) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var werr error
	res.Samples.Each(func(partition string, samples []derive.Sample) {
		if werr != nil {
			return
		}
		path := filepath.Join(dir, partition+".jsonl")
		werr = writeFile(path, func(f *os.File) error {
			return render.NewJSONRenderer(f).Render(samples)
		})
		if werr == nil {
			fmt.Fprintf(ui.Out, "%-5s %6d samples ⟶ %s\n", partition, len(samples), path)
		}
	})
	if werr != nil {
		return werr
	}

	return writeFile(filepath.Join(dir, vocabularyFile), func(f *os.File) error {
		return render.NewJSONRenderer(f).Vocabulary(res)
	})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
