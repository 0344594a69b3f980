package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	enginev1 "github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-options/internal/command"
	"github.com/rxtech-lab/argo-options/internal/optimizer"
	argoErrors "github.com/rxtech-lab/argo-options/pkg/errors"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	flagGrid            = "grid"
	flagMaxCombinations = "max-combinations"
	flagWorkers         = "workers"
	flagStartingCapital = "starting-capital"
	flagTop             = "top"
	flagOutput          = "output"
)

// loadGrid reads a grid from a YAML file, or returns the default grid when path is empty.
func loadGrid(path string) (optimizer.Grid, error) {
	if path == "" {
		return optimizer.DefaultGrid(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return optimizer.Grid{}, fmt.Errorf("failed to read grid: %w", err)
	}

	var grid optimizer.Grid
	if err := yaml.Unmarshal(data, &grid); err != nil {
		return optimizer.Grid{}, fmt.Errorf("failed to parse grid: %w", err)
	}

	return grid, nil
}

func writeReport(path string, report optimizer.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := command.Logger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	rawConfig, err := command.ReadConfig(cmd)
	if err != nil {
		return err
	}

	base, err := enginev1.ParseConfig(rawConfig)
	if err != nil {
		return err
	}

	if err := base.Validate(); err != nil {
		return fmt.Errorf("invalid base config: %w", err)
	}

	grid, err := loadGrid(cmd.String(flagGrid))
	if err != nil {
		return err
	}

	metrics, stopMetrics, err := command.Metrics(cmd, logger)
	if err != nil {
		return err
	}
	defer stopMetrics()

	dataSource, err := command.DataSource(cmd, base.StartDate, logger)
	if err != nil {
		return fmt.Errorf("failed to create data source: %w", err)
	}
	defer dataSource.Close()

	opt := optimizer.NewOptimizer(optimizer.Config{
		Base:            base,
		Tickers:         command.Tickers(cmd),
		Grid:            grid,
		MaxCombinations: int(cmd.Int(flagMaxCombinations)),
		Workers:         int(cmd.Int(flagWorkers)),
		StartingCapital: cmd.Float(flagStartingCapital),
	}, dataSource, logger, metrics)

	total := grid.Size()
	if limit := int(cmd.Int(flagMaxCombinations)); limit > 0 && limit < total {
		total = limit
	}

	bar := command.NewProgressBar(os.Stderr, total, "optimize")

	report, err := opt.Run(ctx, func(message string, current int, _ int) {
		bar.Describe(message)
		_ = bar.Set(current)
	})
	_ = bar.Finish()

	if err != nil && !argoErrors.HasCode(err, argoErrors.ErrCodeBacktestCancelled) {
		return fmt.Errorf("optimization failed: %w", err)
	}

	fmt.Print(command.RenderReport(report, int(cmd.Int(flagTop))))

	if output := cmd.String(flagOutput); output != "" {
		if writeErr := writeReport(output, report); writeErr != nil {
			return writeErr
		}

		fmt.Println(command.HelpStyle.Render("Report written to " + output))
	}

	return err
}

// schemaAction prints the JSON schema of the grid file.
func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := optimizer.GetGridSchema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	flags := append(command.RunFlags(),
		&cli.StringFlag{
			Name:  flagGrid,
			Usage: "Parameter grid `FILE` (YAML); defaults to the built-in grid",
		},
		&cli.IntFlag{
			Name:  flagMaxCombinations,
			Usage: "Evaluate at most this many combinations (0 for the whole grid)",
			Value: 50,
		},
		&cli.IntFlag{
			Name:  flagWorkers,
			Usage: "Backtests run at once",
			Value: 4,
		},
		&cli.FloatFlag{
			Name:  flagStartingCapital,
			Usage: "Capital the total return percentage is measured against",
			Value: optimizer.DefaultStartingCapital,
		},
		&cli.IntFlag{
			Name:  flagTop,
			Usage: "Number of best combinations to list",
			Value: 10,
		},
		&cli.StringFlag{
			Name:    flagOutput,
			Aliases: []string{"o"},
			Usage:   "Write the full report to `FILE` (YAML)",
		},
	)

	cmd := &cli.Command{
		Name:  "optimize",
		Usage: "Grid-search risk and sizing parameters for the best total return",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the grid search",
				Flags:  flags,
				Action: optimizeAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the grid file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, command.ErrorStyle.Render("Optimization cancelled"))
			os.Exit(130)
		}

		log.Fatal(command.ErrorStyle.Render(err.Error()))
	}
}
