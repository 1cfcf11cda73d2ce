package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/absaset/absa"
)

func datasetsCommand(e *env, ui UI) *cli.Command {
	return &cli.Command{
		Name:  "datasets",
		Usage: "list the known datasets and their tasks",
		Action: func(c *cli.Context) error {
			r := e.pipeline.Registry()
			for _, name := range r.Names() {
				entry, err := r.Resolve(name)
				if err != nil {
					return err
				}

				tasks := []string{}
				for _, t := range entry.SupportedTasks() {
					tasks = append(tasks, string(t))
				}
				fmt.Fprintf(ui.Out, "%-36s %s\n", name, strings.Join(tasks, ","))
			}
			return nil
		},
	}
}

func loadCommand(e *env, ui UI) *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "load a dataset and print its partition sizes",
		ArgsUsage: "DATASET",
		Action: func(c *cli.Context) error {
			name, err := requireArg(c, 0, "dataset")
			if err != nil {
				return err
			}

			corpus, err := e.pipeline.Load(c.Context, name)
			if err != nil {
				return err
			}

			for _, p := range absa.PartitionNames() {
				part := corpus.Get(p)
				if !part.IsPresent() {
					fmt.Fprintf(ui.Out, "%-5s absent\n", p)
					continue
				}
				fmt.Fprintf(ui.Out, "%-5s %d documents\n", p, part.Len())
			}
			return nil
		},
	}
}

// requireArg returns the positional argument i, named what in the error.
func requireArg(c *cli.Context, i int, what string) (string, error) {
	arg := c.Args().Get(i)
	if arg == "" {
		return "", fmt.Errorf("missing %s argument", what)
	}
	return arg, nil
}
