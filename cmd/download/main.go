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

	"github.com/rxtech-lab/argo-options/internal/command"
	"github.com/rxtech-lab/argo-options/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

const (
	flagStart  = "start"
	flagEnd    = "end"
	flagData   = "data"
	flagMinDTE = "min-dte"
	flagMaxDTE = "max-dte"
)

// downloadAction snapshots the selected provider into parquet files.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := command.Logger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	startDate := cmd.Timestamp(flagStart)
	endDate := cmd.Timestamp(flagEnd)

	dataSource, err := command.DataSource(cmd, startDate, logger)
	if err != nil {
		return fmt.Errorf("failed to create data source: %w", err)
	}
	defer dataSource.Close()

	params := marketdata.DownloadParams{
		Tickers:   command.Tickers(cmd),
		StartDate: startDate,
		EndDate:   endDate,
		MinDTE:    int(cmd.Int(flagMinDTE)),
		MaxDTE:    int(cmd.Int(flagMaxDTE)),
	}

	bar := command.NewProgressBar(os.Stderr, 0, "download")

	client, err := marketdata.NewClient(marketdata.ClientConfig{DataPath: cmd.String(flagData)}, dataSource, logger,
		func(current float64, total float64, message string) {
			bar.ChangeMax(int(total))
			bar.Describe(message)
			_ = bar.Set(int(current))
		})
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	fmt.Fprintln(os.Stderr, command.HelpStyle.Render(fmt.Sprintf("Downloading %d tickers from %s to %s using %s provider...",
		len(params.Tickers), startDate.Format("2006-01-02"), endDate.Format("2006-01-02"), cmd.String(command.FlagProvider))))

	output, err := client.Download(ctx, params)
	_ = bar.Finish()

	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Println(command.TitleStyle.Render(fmt.Sprintf("Wrote %d prices and %d quotes", output.Prices, output.Quotes)))
	fmt.Println(command.HelpStyle.Render(fmt.Sprintf("Replay with --provider duckdb --prices %s --quotes %s", output.PricesPath, output.QuotesPath)))

	return nil
}

func main() {
	flags := []cli.Flag{
		command.TickersFlag(),
		&cli.TimestampFlag{
			Name:     flagStart,
			Aliases:  []string{"s"},
			Usage:    "Start date in `YYYY-MM-DD` format",
			Required: true,
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
		&cli.TimestampFlag{
			Name:    flagEnd,
			Aliases: []string{"e"},
			Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
			Value:   time.Now(),
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
		&cli.StringFlag{
			Name:    flagData,
			Aliases: []string{"d"},
			Usage:   "Path to the data output directory",
			Value:   "data",
		},
		&cli.IntFlag{
			Name:  flagMinDTE,
			Usage: "Shortest days to expiration to snapshot",
			Value: 20,
		},
		&cli.IntFlag{
			Name:  flagMaxDTE,
			Usage: "Longest days to expiration to snapshot",
			Value: 60,
		},
		command.LogLevelFlag(),
	}

	cmd := &cli.Command{
		Name:   "download",
		Usage:  "Snapshot option market data into parquet files",
		Flags:  append(flags, command.DataSourceFlags()...),
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, command.ErrorStyle.Render("Download cancelled"))
			os.Exit(130)
		}

		log.Fatal(command.ErrorStyle.Render(err.Error()))
	}
}
