package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/urfave/cli/v2"

	"github.com/revelaction/absaset/absa"
	"github.com/revelaction/absaset/storage"
)

func saveCommand(e *env, ui UI) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "load a dataset and store it as a snapshot",
		ArgsUsage: "DATASET",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "to",
				Usage:    "snapshot store `PATH`, a directory or a .db file",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			name, err := requireArg(c, 0, "dataset")
			if err != nil {
				return err
			}

			corpus, err := e.pipeline.Load(c.Context, name)
			if err != nil {
				return err
			}

			repo, closer, err := NewSnapshotRepository(c.String("to"))
			if err != nil {
				return err
			}
			defer closer.Close()

			p, bar := newBar(ui, storage.Total(corpus))
			info, err := repo.Write(name, corpus, func(current, _ int, _ string) {
				_ = bar.Set(current)
			})
			p.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(ui.Out, "Saved snapshot %s (%s) to %s\n", info.Name, info.ID, c.String("to"))
			return nil
		},
	}
}

func snapshotsCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "snapshots",
		Usage:     "list the snapshots of a store",
		ArgsUsage: "PATH",
		Action: func(c *cli.Context) error {
			path, err := requireArg(c, 0, "path")
			if err != nil {
				return err
			}

			repo, closer, err := NewSnapshotRepository(path)
			if err != nil {
				return err
			}
			defer closer.Close()

			infos, err := repo.List()
			if err != nil {
				return err
			}

			for _, info := range infos {
				fmt.Fprintf(ui.Out, "%-36s %s %s %s\n", info.Name, info.Created.Format(time.RFC3339), info.ID, formatCounts(info.Counts))
			}
			return nil
		},
	}
}

func importSnapshotCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "import-snapshot",
		Usage: "copy the snapshots of a directory store into a database",
		Flags: copyFlags(),
		Action: func(c *cli.Context) error {
			return copySnapshots(c.String("from"), c.String("to"), ui)
		},
	}
}

func exportSnapshotCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "export-snapshot",
		Usage: "copy the snapshots of a database into a directory store",
		Flags: copyFlags(),
		Action: func(c *cli.Context) error {
			return copySnapshots(c.String("from"), c.String("to"), ui)
		},
	}
}

func copyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "source store `PATH`", Required: true},
		&cli.StringFlag{Name: "to", Usage: "destination store `PATH`", Required: true},
	}
}

// copySnapshots writes every snapshot of the store at from to the store at
// to.
func copySnapshots(from, to string, ui UI) error {
	src, srcCloser, err := NewSnapshotRepository(from)
	if err != nil {
		return err
	}
	defer srcCloser.Close()

	dst, dstCloser, err := NewSnapshotRepository(to)
	if err != nil {
		return err
	}
	defer dstCloser.Close()

	fmt.Fprintf(ui.Out, "Reading snapshots from %s...\n", from)
	infos, err := src.List()
	if err != nil {
		return err
	}

	p, bar := newBar(ui, len(infos))

	count := 0
	for _, info := range infos {
		_, corpus, err := src.Read(info.Name)
		if err != nil {
			p.Stop()
			return fmt.Errorf("failed to read snapshot %s: %w", info.Name, err)
		}

		if _, err := dst.Write(info.Name, corpus, nil); err != nil {
			p.Stop()
			return fmt.Errorf("failed to write snapshot %s: %w", info.Name, err)
		}
		count++
		bar.Incr()
	}
	p.Stop()

	fmt.Fprintf(ui.Out, "Successfully copied %d snapshots from %s to %s\n", count, from, to)
	return nil
}

func newBar(ui UI, total int) (*uiprogress.Progress, *uiprogress.Bar) {
	p := uiprogress.New()
	p.SetOut(ui.Err)
	p.Start()

	bar := p.AddBar(total)
	bar.AppendCompleted()
	bar.PrependElapsed()
	return p, bar
}

func formatCounts(counts map[string]int) string {
	parts := []string{}
	for _, p := range absa.PartitionNames() {
		if n, ok := counts[p]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", p, n))
		}
	}

	// counts of unknown partitions last
	extra := []string{}
	for p, n := range counts {
		if p != absa.Train && p != absa.Dev && p != absa.Test {
			extra = append(extra, fmt.Sprintf("%s=%d", p, n))
		}
	}
	sort.Strings(extra)

	return strings.Join(append(parts, extra...), " ")
}
