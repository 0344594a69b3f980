package command

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-options/internal/optimizer"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/schollz/progressbar/v3"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// NewProgressBar returns a bar writing to w that tracks total steps.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

// FormatPnL formats a dollar amount, colored by sign.
func FormatPnL(value float64) string {
	text := fmt.Sprintf("%.2f", value)

	switch {
	case value > 0:
		return gainStyle.Render(text)
	case value < 0:
		return lossStyle.Render(text)
	default:
		return text
	}
}

func statsRows(stats types.SummaryStats) [][]string {
	return [][]string{
		{"Total trades", fmt.Sprint(stats.TotalTrades)},
		{"Winning / losing", fmt.Sprintf("%d / %d", stats.WinningTrades, stats.LosingTrades)},
		{"Win rate", fmt.Sprintf("%.2f%%", stats.WinRate)},
		{"Total P&L", FormatPnL(stats.TotalPnL)},
		{"Average P&L", FormatPnL(stats.AvgPnL)},
		{"Average win / loss", fmt.Sprintf("%s / %s", FormatPnL(stats.AvgWin), FormatPnL(stats.AvgLoss))},
		{"Profit factor", fmt.Sprintf("%.2f", stats.ProfitFactor)},
		{"Max drawdown", FormatPnL(stats.MaxDrawdown)},
		{"Sharpe ratio", fmt.Sprintf("%.2f", stats.SharpeRatio)},
		{"Average days held", fmt.Sprintf("%.1f", stats.AvgDaysHeld)},
		{"Best / worst trade", fmt.Sprintf("%s / %s", FormatPnL(stats.MaxTradeProfit), FormatPnL(stats.MaxTradeLoss))},
		{"Fees", fmt.Sprintf("%.2f", stats.TotalFees)},
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

// RenderResults renders the summary of a backtest run.
func RenderResults(results types.Results) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %s → %s", results.Strategy,
		results.StartDate.Format("2006-01-02"), results.EndDate.Format("2006-01-02"))
	if results.Cancelled {
		title += " (cancelled)"
	}

	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(newTable("Metric", "Value").Rows(statsRows(results.Stats)...).String())
	b.WriteString("\n")

	if len(results.Stats.ExitReasons) > 0 {
		reasons := make([]string, 0, len(results.Stats.ExitReasons))
		for reason := range results.Stats.ExitReasons {
			reasons = append(reasons, string(reason))
		}

		sort.Strings(reasons)

		exits := newTable("Exit reason", "Trades")
		for _, reason := range reasons {
			exits.Row(reason, fmt.Sprint(results.Stats.ExitReasons[types.ExitReason(reason)]))
		}

		b.WriteString(exits.String())
		b.WriteString("\n")
	}

	if len(results.BySymbol) > 0 {
		symbols := make([]string, 0, len(results.BySymbol))
		for symbol := range results.BySymbol {
			symbols = append(symbols, symbol)
		}

		sort.Strings(symbols)

		bySymbol := newTable("Symbol", "Trades", "P&L")

		for _, symbol := range symbols {
			pnl := 0.0
			for _, trade := range results.BySymbol[symbol] {
				pnl += trade.PnL
			}

			bySymbol.Row(symbol, fmt.Sprint(len(results.BySymbol[symbol])), FormatPnL(pnl))
		}

		b.WriteString(bySymbol.String())
		b.WriteString("\n")
	}

	if results.TradesFilePath != "" {
		b.WriteString(HelpStyle.Render("Trades written to " + results.TradesFilePath))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderReport renders the outcome of an optimization, listing at most top results.
func RenderReport(report optimizer.Report, top int) string {
	var b strings.Builder

	title := fmt.Sprintf("Tested %d combinations: %d scored, %d without trades, %d invalid",
		report.Total, len(report.Results), report.NoTrades, report.Invalid)
	if report.Cancelled {
		title += " (cancelled)"
	}

	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	if len(report.Results) == 0 {
		return b.String()
	}

	ranked := append([]optimizer.Result{}, report.Results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalReturnPct > ranked[j].TotalReturnPct
	})

	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}

	results := newTable("Combination", "Return %", "Trades", "Win rate", "P&L")
	for _, result := range ranked {
		results.Row(
			result.Combination.String(),
			fmt.Sprintf("%.2f", result.TotalReturnPct),
			fmt.Sprint(result.Stats.TotalTrades),
			fmt.Sprintf("%.2f%%", result.Stats.WinRate),
			FormatPnL(result.Stats.TotalPnL),
		)
	}

	b.WriteString(results.String())
	b.WriteString("\n")
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Best: %s (%.2f%% return)", report.Best.Combination, report.Best.TotalReturnPct)))
	b.WriteString("\n")

	return b.String()
}
