package optimizer

import (
	"fmt"

	engine "github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-options/pkg/utils"
)

// repairedDTEWindow is added to min_dte when a combination has min_dte >= max_dte.
const repairedDTEWindow = 15

// Grid lists the values tried for each parameter. An empty dimension keeps
// the value of the base configuration.
type Grid struct {
	StopLossPct     []float64 `yaml:"stop_loss_pct" json:"stop_loss_pct" jsonschema:"title=Stop Loss %,description=Stop loss thresholds as a percentage of max loss"`
	ProfitTargetPct []float64 `yaml:"profit_target_pct" json:"profit_target_pct" jsonschema:"title=Profit Target %,description=Profit targets as a percentage of max profit"`
	TrailingStopPct []float64 `yaml:"trailing_stop_pct" json:"trailing_stop_pct" jsonschema:"title=Trailing Stop %,description=Trailing stop retracements from the high water mark"`
	MinDTE          []int     `yaml:"min_dte" json:"min_dte" jsonschema:"title=Min DTE"`
	MaxDTE          []int     `yaml:"max_dte" json:"max_dte" jsonschema:"title=Max DTE"`
	MaxPositions    []int     `yaml:"max_positions" json:"max_positions" jsonschema:"title=Max Positions"`
	CapitalPerTrade []float64 `yaml:"capital_per_trade" json:"capital_per_trade" jsonschema:"title=Capital Per Trade"`
}

// GetGridSchema returns the JSON schema of a grid file.
func GetGridSchema() (string, error) {
	return utils.GetSchemaFromConfig(Grid{})
}

// DefaultGrid returns the grid searched when no grid file is given.
func DefaultGrid() Grid {
	return Grid{
		StopLossPct:     []float64{25, 50, 75, 100},
		ProfitTargetPct: []float64{25, 50, 75, 100},
		TrailingStopPct: []float64{15, 25, 35, 50},
		MinDTE:          []int{20, 30, 45, 60},
		MaxDTE:          []int{45, 60, 75, 90},
		MaxPositions:    []int{5, 10, 15, 20},
		CapitalPerTrade: []float64{500, 1000, 2000, 5000},
	}
}

// Combination is one point of the grid. Nil fields keep the base value.
type Combination struct {
	Index           int      `yaml:"index" json:"index"`
	StopLossPct     *float64 `yaml:"stop_loss_pct,omitempty" json:"stop_loss_pct,omitempty"`
	ProfitTargetPct *float64 `yaml:"profit_target_pct,omitempty" json:"profit_target_pct,omitempty"`
	TrailingStopPct *float64 `yaml:"trailing_stop_pct,omitempty" json:"trailing_stop_pct,omitempty"`
	MinDTE          *int     `yaml:"min_dte,omitempty" json:"min_dte,omitempty"`
	MaxDTE          *int     `yaml:"max_dte,omitempty" json:"max_dte,omitempty"`
	MaxPositions    *int     `yaml:"max_positions,omitempty" json:"max_positions,omitempty"`
	CapitalPerTrade *float64 `yaml:"capital_per_trade,omitempty" json:"capital_per_trade,omitempty"`
}

// Size returns the number of combinations the grid expands to.
func (g Grid) Size() int {
	size := 1

	for _, n := range g.dimensions() {
		if n > 0 {
			size *= n
		}
	}

	return size
}

func (g Grid) dimensions() []int {
	return []int{
		len(g.StopLossPct),
		len(g.ProfitTargetPct),
		len(g.TrailingStopPct),
		len(g.MinDTE),
		len(g.MaxDTE),
		len(g.MaxPositions),
		len(g.CapitalPerTrade),
	}
}

// IsEmpty reports whether no dimension has any value.
func (g Grid) IsEmpty() bool {
	for _, n := range g.dimensions() {
		if n > 0 {
			return false
		}
	}

	return true
}

// Combinations expands the grid in a fixed order: the last dimension
// (capital per trade) varies fastest. At most limit combinations are
// returned when limit is positive.
func (g Grid) Combinations(limit int) []Combination {
	if g.IsEmpty() {
		return nil
	}

	total := g.Size()
	if limit > 0 && limit < total {
		total = limit
	}

	dims := g.dimensions()
	combinations := make([]Combination, 0, total)

	for index := 0; index < total; index++ {
		pick := make([]int, len(dims))
		rest := index

		for d := len(dims) - 1; d >= 0; d-- {
			if dims[d] == 0 {
				pick[d] = -1

				continue
			}

			pick[d] = rest % dims[d]
			rest /= dims[d]
		}

		combination := Combination{
			Index:           index,
			StopLossPct:     at(g.StopLossPct, pick[0]),
			ProfitTargetPct: at(g.ProfitTargetPct, pick[1]),
			TrailingStopPct: at(g.TrailingStopPct, pick[2]),
			MinDTE:          at(g.MinDTE, pick[3]),
			MaxDTE:          at(g.MaxDTE, pick[4]),
			MaxPositions:    at(g.MaxPositions, pick[5]),
			CapitalPerTrade: at(g.CapitalPerTrade, pick[6]),
		}

		combinations = append(combinations, combination)
	}

	return combinations
}

func at[T any](values []T, i int) *T {
	if i < 0 {
		return nil
	}

	v := values[i]

	return &v
}

// Apply returns a copy of base with the combination's values set. A risk
// percentage in the combination also enables its rule. A DTE window that is
// empty after applying is widened to min_dte + 15.
func (c Combination) Apply(base engine.BacktestEngineV1Config) engine.BacktestEngineV1Config {
	config := base

	if c.StopLossPct != nil {
		config.RiskManagement.StopLossEnabled = true
		config.RiskManagement.StopLossPct = *c.StopLossPct
	}

	if c.ProfitTargetPct != nil {
		config.RiskManagement.ProfitTargetEnabled = true
		config.RiskManagement.ProfitTargetPct = *c.ProfitTargetPct
	}

	if c.TrailingStopPct != nil {
		config.RiskManagement.TrailingStopEnabled = true
		config.RiskManagement.TrailingStopPct = *c.TrailingStopPct
	}

	if c.MinDTE != nil {
		config.MinDTE = *c.MinDTE
	}

	if c.MaxDTE != nil {
		config.MaxDTE = *c.MaxDTE
	}

	if config.MinDTE >= config.MaxDTE {
		config.MaxDTE = config.MinDTE + repairedDTEWindow
	}

	if c.MaxPositions != nil {
		config.MaxPositions = *c.MaxPositions
	}

	if c.CapitalPerTrade != nil {
		config.CapitalPerTrade = *c.CapitalPerTrade
	}

	return config
}

// String renders the combination for logs and progress output.
func (c Combination) String() string {
	return fmt.Sprintf("#%d sl=%s pt=%s trail=%s dte=%s-%s max_pos=%s capital=%s",
		c.Index,
		format(c.StopLossPct), format(c.ProfitTargetPct), format(c.TrailingStopPct),
		format(c.MinDTE), format(c.MaxDTE),
		format(c.MaxPositions), format(c.CapitalPerTrade),
	)
}

func format[T any](v *T) string {
	if v == nil {
		return "-"
	}

	return fmt.Sprint(*v)
}
