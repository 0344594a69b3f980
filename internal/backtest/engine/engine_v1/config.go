package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/risk"
	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/strategy"
	"github.com/rxtech-lab/argo-options/internal/types"
	"github.com/rxtech-lab/argo-options/internal/version"
	"github.com/rxtech-lab/argo-options/pkg/errors"
	"gopkg.in/yaml.v2"
)

// TradeFrequency controls which calendar days are simulated.
type TradeFrequency string

const (
	TradeFrequencyDaily  TradeFrequency = "daily"
	TradeFrequencyWeekly TradeFrequency = "weekly"
)

var AllTradeFrequencies = []any{
	TradeFrequencyDaily,
	TradeFrequencyWeekly,
}

const (
	defaultDailyProgressInterval  = 20
	defaultWeeklyProgressInterval = 3
)

var configDateLayouts = []string{"2006-01-02", time.RFC3339}

// RiskManagementConfig holds the exit rule toggles. Thresholds are percentages.
type RiskManagementConfig struct {
	StopLossEnabled     bool    `yaml:"stop_loss_enabled" json:"stop_loss_enabled" jsonschema:"title=Stop Loss Enabled,description=Close a position when its loss reaches stop_loss_pct of the max loss"`
	StopLossPct         float64 `yaml:"stop_loss_pct" json:"stop_loss_pct" jsonschema:"title=Stop Loss Percent,description=Percent of max loss that triggers the stop,minimum=0" validate:"gte=0"`
	ProfitTargetEnabled bool    `yaml:"profit_target_enabled" json:"profit_target_enabled" jsonschema:"title=Profit Target Enabled,description=Close a position when its profit reaches profit_target_pct of the max profit"`
	ProfitTargetPct     float64 `yaml:"profit_target_pct" json:"profit_target_pct" jsonschema:"title=Profit Target Percent,description=Percent of max profit that triggers the target,minimum=0" validate:"gte=0"`
	TrailingStopEnabled bool    `yaml:"trailing_stop_enabled" json:"trailing_stop_enabled" jsonschema:"title=Trailing Stop Enabled,description=Close a position when it gives back trailing_stop_pct of its best mark"`
	TrailingStopPct     float64 `yaml:"trailing_stop_pct" json:"trailing_stop_pct" jsonschema:"title=Trailing Stop Percent,description=Percent of the high-water mark that may be given back,minimum=0,maximum=100" validate:"gte=0,lte=100"`
}

// Rules converts the configuration into risk manager rules.
func (r RiskManagementConfig) Rules() risk.Rules {
	return risk.Rules{
		StopLossEnabled:     r.StopLossEnabled,
		StopLossPct:         r.StopLossPct,
		ProfitTargetEnabled: r.ProfitTargetEnabled,
		ProfitTargetPct:     r.ProfitTargetPct,
		TrailingStopEnabled: r.TrailingStopEnabled,
		TrailingStopPct:     r.TrailingStopPct,
	}
}

// StrategyParameters are the strategy tuning knobs.
// Delta and IV rank bounds are validated and recorded with the run but the
// reference constructors select strikes by OTM distance only.
type StrategyParameters struct {
	DeltaShortMin   float64 `yaml:"delta_short_min" json:"delta_short_min" jsonschema:"title=Short Delta Min,minimum=0,maximum=1" validate:"gte=0,lte=1"`
	DeltaShortMax   float64 `yaml:"delta_short_max" json:"delta_short_max" jsonschema:"title=Short Delta Max,minimum=0,maximum=1" validate:"gte=0,lte=1,gtefield=DeltaShortMin"`
	DeltaLongMin    float64 `yaml:"delta_long_min" json:"delta_long_min" jsonschema:"title=Long Delta Min,minimum=0,maximum=1" validate:"gte=0,lte=1"`
	DeltaLongMax    float64 `yaml:"delta_long_max" json:"delta_long_max" jsonschema:"title=Long Delta Max,minimum=0,maximum=1" validate:"gte=0,lte=1,gtefield=DeltaLongMin"`
	IVRankMin       float64 `yaml:"iv_rank_min" json:"iv_rank_min" jsonschema:"title=IV Rank Min,minimum=0,maximum=100" validate:"gte=0,lte=100"`
	IVRankMax       float64 `yaml:"iv_rank_max" json:"iv_rank_max" jsonschema:"title=IV Rank Max,minimum=0,maximum=100" validate:"gte=0,lte=100,gtefield=IVRankMin"`
	MinOpenInterest int64   `yaml:"min_open_interest" json:"min_open_interest" jsonschema:"title=Min Open Interest,description=Quotes below this open interest are ignored (0 disables),minimum=0" validate:"gte=0"`
	MinVolume       int64   `yaml:"min_volume" json:"min_volume" jsonschema:"title=Min Volume,description=Quotes below this volume are ignored (0 disables),minimum=0" validate:"gte=0"`
}

// LiquidityFilter returns the quote filter used by strategy constructors.
func (p StrategyParameters) LiquidityFilter() strategy.LiquidityFilter {
	return strategy.LiquidityFilter{
		MinOpenInterest: p.MinOpenInterest,
		MinVolume:       p.MinVolume,
	}
}

type BacktestEngineV1Config struct {
	Version          string                `yaml:"version" json:"version" jsonschema:"title=Version,description=Engine version the config was written for"`
	Strategy         types.StrategyKind    `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy,description=Options strategy to simulate" validate:"required"`
	StartDate        time.Time             `yaml:"start_date" json:"start_date" jsonschema:"title=Start Date,description=First calendar day of the backtest (YYYY-MM-DD),format=date"`
	EndDate          time.Time             `yaml:"end_date" json:"end_date" jsonschema:"title=End Date,description=Last calendar day of the backtest (YYYY-MM-DD),format=date"`
	TradeFrequency   TradeFrequency        `yaml:"trade_frequency" json:"trade_frequency" jsonschema:"title=Trade Frequency,description=daily checks every weekday and weekly checks every Monday" validate:"required"`
	MinDTE           int                   `yaml:"min_dte" json:"min_dte" jsonschema:"title=Min DTE,description=Minimum days to expiration for new positions,minimum=0"`
	MaxDTE           int                   `yaml:"max_dte" json:"max_dte" jsonschema:"title=Max DTE,description=Maximum days to expiration for new positions,minimum=0"`
	MaxPositions     int                   `yaml:"max_positions" json:"max_positions" jsonschema:"title=Max Positions,description=Maximum number of concurrently open positions,minimum=1"`
	CapitalPerTrade  float64               `yaml:"capital_per_trade" json:"capital_per_trade" jsonschema:"title=Capital Per Trade,description=Capital allocated to each position in USD,minimum=0" validate:"gte=0"`
	Broker           commission_fee.Broker `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	ProgressInterval int                   `yaml:"progress_interval" json:"progress_interval" jsonschema:"title=Progress Interval,description=Steps between progress messages (0 uses the frequency default),minimum=0" validate:"gte=0"`
	EntryWorkers     int                   `yaml:"entry_workers" json:"entry_workers" jsonschema:"title=Entry Workers,description=Concurrent entry checks per step (1 or less is sequential),minimum=0" validate:"gte=0"`
	RiskManagement   RiskManagementConfig  `yaml:"risk_management" json:"risk_management" jsonschema:"title=Risk Management"`
	Parameters       StrategyParameters    `yaml:"parameters" json:"parameters" jsonschema:"title=Strategy Parameters"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
// Dates accept either YYYY-MM-DD or RFC3339. Missing fields keep the EmptyConfig defaults.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	defaults := EmptyConfig()

	type Config struct {
		Version          string                `yaml:"version"`
		Strategy         types.StrategyKind    `yaml:"strategy"`
		StartDate        string                `yaml:"start_date"`
		EndDate          string                `yaml:"end_date"`
		TradeFrequency   TradeFrequency        `yaml:"trade_frequency"`
		MinDTE           int                   `yaml:"min_dte"`
		MaxDTE           int                   `yaml:"max_dte"`
		MaxPositions     int                   `yaml:"max_positions"`
		CapitalPerTrade  float64               `yaml:"capital_per_trade"`
		Broker           commission_fee.Broker `yaml:"broker"`
		ProgressInterval int                   `yaml:"progress_interval"`
		EntryWorkers     int                   `yaml:"entry_workers"`
		RiskManagement   RiskManagementConfig  `yaml:"risk_management"`
		Parameters       StrategyParameters    `yaml:"parameters"`
	}

	config := Config{
		Version:          defaults.Version,
		Strategy:         defaults.Strategy,
		TradeFrequency:   defaults.TradeFrequency,
		MinDTE:           defaults.MinDTE,
		MaxDTE:           defaults.MaxDTE,
		MaxPositions:     defaults.MaxPositions,
		CapitalPerTrade:  defaults.CapitalPerTrade,
		Broker:           defaults.Broker,
		ProgressInterval: defaults.ProgressInterval,
		EntryWorkers:     defaults.EntryWorkers,
		RiskManagement:   defaults.RiskManagement,
		Parameters:       defaults.Parameters,
	}
	if err := unmarshal(&config); err != nil {
		return err
	}

	startDate, err := parseConfigDate("start_date", config.StartDate)
	if err != nil {
		return err
	}

	endDate, err := parseConfigDate("end_date", config.EndDate)
	if err != nil {
		return err
	}

	c.Version = config.Version
	c.Strategy = config.Strategy
	c.StartDate = startDate
	c.EndDate = endDate
	c.TradeFrequency = config.TradeFrequency
	c.MinDTE = config.MinDTE
	c.MaxDTE = config.MaxDTE
	c.MaxPositions = config.MaxPositions
	c.CapitalPerTrade = config.CapitalPerTrade
	c.Broker = config.Broker
	c.ProgressInterval = config.ProgressInterval
	c.EntryWorkers = config.EntryWorkers
	c.RiskManagement = config.RiskManagement
	c.Parameters = config.Parameters

	return nil
}

func parseConfigDate(field string, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}

	for _, layout := range configDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return types.Date(parsed), nil
		}
	}

	return time.Time{}, errors.NewField(errors.ErrCodeInvalidConfiguration, field, fmt.Sprintf("cannot parse date '%s', expected YYYY-MM-DD", value))
}

// Validate checks every precondition a run depends on.
// Typed checks come first so callers can branch on the error code.
func (c *BacktestEngineV1Config) Validate() error {
	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return err
	}

	if c.StartDate.IsZero() {
		return errors.NewField(errors.ErrCodeMissingParameter, "start_date", "start date is required")
	}

	if c.EndDate.IsZero() {
		return errors.NewField(errors.ErrCodeMissingParameter, "end_date", "end date is required")
	}

	if !c.StartDate.Before(c.EndDate) {
		return errors.NewField(errors.ErrCodeInvalidDateRange, "start_date",
			fmt.Sprintf("start date %s must be before end date %s", c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02")))
	}

	if c.MaxPositions < 1 {
		return errors.NewField(errors.ErrCodeInvalidMaxPositions, "max_positions", fmt.Sprintf("max positions must be at least 1, got %d", c.MaxPositions))
	}

	if c.MinDTE < 0 || c.MaxDTE < c.MinDTE {
		return errors.NewField(errors.ErrCodeInvalidDTERange, "max_dte", fmt.Sprintf("invalid DTE range [%d, %d]", c.MinDTE, c.MaxDTE))
	}

	if !containsValue(AllTradeFrequencies, c.TradeFrequency) {
		return errors.NewField(errors.ErrCodeInvalidFrequency, "trade_frequency", fmt.Sprintf("unsupported trade frequency '%s'", c.TradeFrequency))
	}

	if !containsValue(types.AllStrategies, c.Strategy) {
		return errors.NewField(errors.ErrCodeUnsupportedStrategy, "strategy", fmt.Sprintf("unsupported strategy '%s'", c.Strategy))
	}

	if !containsValue(commission_fee.AllBrokers, c.Broker) {
		return errors.NewField(errors.ErrCodeInvalidConfiguration, "broker", fmt.Sprintf("unsupported broker '%s'", c.Broker))
	}

	if err := c.validateThresholds(); err != nil {
		return err
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return nil
}

func (c *BacktestEngineV1Config) validateThresholds() error {
	rm := c.RiskManagement

	if rm.StopLossEnabled && rm.StopLossPct <= 0 {
		return errors.NewField(errors.ErrCodeInvalidThreshold, "stop_loss_pct", "stop loss percent must be positive when enabled")
	}

	if rm.ProfitTargetEnabled && rm.ProfitTargetPct <= 0 {
		return errors.NewField(errors.ErrCodeInvalidThreshold, "profit_target_pct", "profit target percent must be positive when enabled")
	}

	if rm.TrailingStopEnabled && (rm.TrailingStopPct <= 0 || rm.TrailingStopPct > 100) {
		return errors.NewField(errors.ErrCodeInvalidThreshold, "trailing_stop_pct", "trailing stop percent must be in (0, 100] when enabled")
	}

	return nil
}

// EffectiveProgressInterval returns the configured progress interval or the frequency default.
func (c *BacktestEngineV1Config) EffectiveProgressInterval() int {
	if c.ProgressInterval > 0 {
		return c.ProgressInterval
	}

	if c.TradeFrequency == TradeFrequencyWeekly {
		return defaultWeeklyProgressInterval
	}

	return defaultDailyProgressInterval
}

func containsValue[T comparable](values []any, value T) bool {
	for _, v := range values {
		if typed, ok := v.(T); ok && typed == value {
			return true
		}
	}

	return false
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch {
			case t == reflect.TypeOf(time.Time{}):
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date",
				}
			case strings.Contains(t.String(), "commission_fee.Broker"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			case strings.Contains(t.String(), "types.StrategyKind"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: types.AllStrategies,
				}
			case strings.Contains(t.String(), "TradeFrequency"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: AllTradeFrequencies,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for the options BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a valid iron condor configuration with every risk rule disabled.
func TestConfig(startDate time.Time, endDate time.Time, frequency TradeFrequency) BacktestEngineV1Config {
	config := EmptyConfig()
	config.StartDate = types.Date(startDate)
	config.EndDate = types.Date(endDate)
	config.TradeFrequency = frequency
	config.RiskManagement = RiskManagementConfig{}

	return config
}

// ParseConfig parses a YAML config over the defaults of EmptyConfig. It does not validate.
func ParseConfig(config string) (BacktestEngineV1Config, error) {
	parsed := EmptyConfig()

	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return BacktestEngineV1Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	return parsed, nil
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Version:          "",
		Strategy:         types.StrategyIronCondor,
		StartDate:        time.Time{},
		EndDate:          time.Time{},
		TradeFrequency:   TradeFrequencyDaily,
		MinDTE:           30,
		MaxDTE:           60,
		MaxPositions:     10,
		CapitalPerTrade:  1000,
		Broker:           commission_fee.BrokerZero,
		ProgressInterval: 0,
		EntryWorkers:     1,
		RiskManagement: RiskManagementConfig{
			StopLossEnabled:     true,
			StopLossPct:         50,
			ProfitTargetEnabled: true,
			ProfitTargetPct:     50,
			TrailingStopEnabled: false,
			TrailingStopPct:     25,
		},
		Parameters: StrategyParameters{
			DeltaShortMin:   0.15,
			DeltaShortMax:   0.30,
			DeltaLongMin:    0.05,
			DeltaLongMax:    0.15,
			IVRankMin:       30,
			IVRankMax:       100,
			MinOpenInterest: 100,
			MinVolume:       50,
		},
	}
}
