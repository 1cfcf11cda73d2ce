package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}

	if err := newApp(ui).Run(os.Args); err != nil {
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "absaset: %v\n", err)
}

func newApp(ui UI) *cli.App {
	e := &env{}

	return &cli.App{
		Name:      "absaset",
		Usage:     "normalize aspect based sentiment corpora and derive task samples",
		Writer:    ui.Out,
		ErrWriter: ui.Err,
		// errors are printed by main
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration `FILE`",
				EnvVars: []string{"ABSASET_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "base `DIR` of the dataset locators, may be s3://bucket/prefix",
				EnvVars: []string{"ABSASET_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "logrus log `LEVEL`",
				EnvVars: []string{"ABSASET_LOG_LEVEL"},
			},
			&cli.Int64Flag{
				Name:    "seed",
				Usage:   "seed of the random splits",
				EnvVars: []string{"ABSASET_SEED"},
			},
			&cli.Float64Flag{
				Name:    "dev-fraction",
				Usage:   "fraction of train held out as dev, 0 makes dev the test partition",
				EnvVars: []string{"ABSASET_DEV_FRACTION"},
			},
			&cli.StringFlag{
				Name:    "metrics-file",
				Usage:   "write the prometheus metrics to `FILE` on exit",
				EnvVars: []string{"ABSASET_METRICS_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			built, err := setup(c, ui)
			if err != nil {
				return err
			}
			*e = *built
			return nil
		},
		After: func(c *cli.Context) error {
			if e.metricsFile == "" {
				return nil
			}
			return e.metrics.WriteTextfile(e.metricsFile)
		},
		Commands: []*cli.Command{
			datasetsCommand(e, ui),
			loadCommand(e, ui),
			statCommand(e, ui),
			deriveCommand(e, ui),
			showCommand(e, ui),
			browseCommand(e, ui),
			saveCommand(e, ui),
			snapshotsCommand(ui),
			importSnapshotCommand(ui),
			exportSnapshotCommand(ui),
			versionCommand(ui),
		},
	}
}
