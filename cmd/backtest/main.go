package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	engine "github.com/rxtech-lab/argo-options/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-options/internal/command"
	argoErrors "github.com/rxtech-lab/argo-options/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const flagResults = "results"

// runAction runs one backtest and prints its summary.
func runAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := command.Logger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	config, err := command.ReadConfig(cmd)
	if err != nil {
		return err
	}

	metrics, stopMetrics, err := command.Metrics(cmd, logger)
	if err != nil {
		return err
	}
	defer stopMetrics()

	backtest := enginev1.NewBacktestEngineV1()
	backtest.SetLogger(logger)
	backtest.SetMetrics(metrics)

	defer func() {
		if err := backtest.Close(); err != nil {
			logger.Warn("Failed to close backtest engine", zap.Error(err))
		}
	}()

	if err := backtest.Initialize(config); err != nil {
		return fmt.Errorf("failed to initialize backtest engine: %w", err)
	}

	dataSource, err := command.DataSource(cmd, backtest.Config().StartDate, logger)
	if err != nil {
		return fmt.Errorf("failed to create data source: %w", err)
	}
	defer dataSource.Close()

	if err := backtest.SetDataSource(dataSource); err != nil {
		return err
	}

	if err := backtest.SetResultsFolder(cmd.String(flagResults)); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	onStart := engine.OnBacktestStartCallback(func(runID string, tickers []string, totalSteps int) error {
		fmt.Fprintln(os.Stderr, command.HelpStyle.Render(fmt.Sprintf("Run %s over %d tickers", runID, len(tickers))))
		bar = command.NewProgressBar(os.Stderr, totalSteps, "backtest")

		return nil
	})
	onStep := engine.OnStepCallback(func(current int, _ int, _ time.Time) {
		_ = bar.Set(current)
	})
	onEnd := engine.OnBacktestEndCallback(func(error) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	started := time.Now()

	results, err := backtest.Run(ctx, command.Tickers(cmd), engine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnStep:          &onStep,
		OnBacktestEnd:   &onEnd,
	})
	if err != nil && !argoErrors.HasCode(err, argoErrors.ErrCodeBacktestCancelled) {
		return fmt.Errorf("backtest failed: %w", err)
	}

	fmt.Print(command.RenderResults(results))
	fmt.Println(command.HelpStyle.Render(fmt.Sprintf("Finished in %s", time.Since(started).Round(time.Millisecond))))

	return err
}

// schemaAction prints the JSON schema of the backtest config.
func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := enginev1.NewBacktestEngineV1().GetConfigSchema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	runFlags := append(command.RunFlags(), &cli.StringFlag{
		Name:    flagResults,
		Aliases: []string{"r"},
		Usage:   "Folder to write results.yaml and trades.parquet to",
	})

	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Backtest options strategies over a ticker universe",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a backtest",
				Flags:  runFlags,
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the backtest config",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, command.ErrorStyle.Render("Backtest cancelled"))
			os.Exit(130)
		}

		log.Fatal(command.ErrorStyle.Render(err.Error()))
	}
}
