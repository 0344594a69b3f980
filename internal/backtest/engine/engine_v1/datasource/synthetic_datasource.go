package datasource

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-options/internal/types"
)

// SyntheticConfig configures the generated market.
type SyntheticConfig struct {
	// Seed makes every price path and chain reproducible.
	Seed int64
	// Anchor is the first date with a price. Earlier dates have no data.
	Anchor time.Time
	// InitialPrice is the base starting price, varied per ticker by up to +/-20%.
	InitialPrice float64
	// DailyVolatility is the standard deviation of daily log returns.
	DailyVolatility float64
	// ImpliedVolatility drives the width of the premium curve.
	ImpliedVolatility float64
	// StrikesPerSide is the number of strikes listed above and below the money.
	StrikesPerSide int
	// MissingDataRate is the fraction of (ticker, date) pairs without a price.
	MissingDataRate float64
}

// DefaultSyntheticConfig returns a calm market anchored at start.
func DefaultSyntheticConfig(seed int64, start time.Time) SyntheticConfig {
	return SyntheticConfig{
		Seed:              seed,
		Anchor:            types.Date(start),
		InitialPrice:      100,
		DailyVolatility:   0.01,
		ImpliedVolatility: 0.25,
		StrikesPerSide:    15,
		MissingDataRate:   0,
	}
}

// SyntheticDataSource generates a deterministic market: a geometric Brownian
// motion price path per ticker, Friday expirations and a smooth premium curve.
// It lets the engine run without a market data subscription.
type SyntheticDataSource struct {
	config SyntheticConfig
	paths  map[string][]float64
	mu     sync.Mutex
}

func NewSyntheticDataSource(config SyntheticConfig) *SyntheticDataSource {
	config.Anchor = types.Date(config.Anchor)

	return &SyntheticDataSource{
		config: config,
		paths:  make(map[string][]float64),
	}
}

// GetUnderlyingPrice implements DataSource.
func (s *SyntheticDataSource) GetUnderlyingPrice(ctx context.Context, ticker string, date time.Time) (optional.Option[float64], error) {
	if err := ctx.Err(); err != nil {
		return optional.None[float64](), err
	}

	day := types.Date(date)
	if day.Before(s.config.Anchor) || isWeekend(day) || s.missing(ticker, day) {
		return optional.None[float64](), nil
	}

	return optional.Some(s.priceAt(ticker, types.DaysBetween(s.config.Anchor, day))), nil
}

// ListExpirations implements DataSource. Every Friday is an expiration.
func (s *SyntheticDataSource) ListExpirations(ctx context.Context, ticker string, date time.Time, minDTE int, maxDTE int) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	first, last := dteWindow(date, minDTE, maxDTE)

	var expirations []time.Time

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Friday {
			expirations = append(expirations, d)
		}
	}

	return expirations, nil
}

// GetOptionChain implements DataSource.
func (s *SyntheticDataSource) GetOptionChain(ctx context.Context, ticker string, date time.Time, expiration time.Time) ([]types.OptionQuote, error) {
	price, err := s.GetUnderlyingPrice(ctx, ticker, date)
	if err != nil || price.IsNone() {
		return nil, err
	}

	dte := types.DaysBetween(date, expiration)
	if dte <= 0 {
		return nil, nil
	}

	spot := price.Unwrap()
	step := strikeStep(spot)
	atm := math.Round(spot/step) * step
	sigma := s.config.ImpliedVolatility * math.Sqrt(float64(dte)/365)
	rng := rand.New(rand.NewSource(s.seedFor(ticker, types.Date(date))))

	chain := make([]types.OptionQuote, 0, 2*(2*s.config.StrikesPerSide+1))

	for i := -s.config.StrikesPerSide; i <= s.config.StrikesPerSide; i++ {
		strike := atm + float64(i)*step
		if strike <= 0 {
			continue
		}

		for _, optionType := range []types.OptionType{types.OptionTypeCall, types.OptionTypePut} {
			mid := premium(optionType, spot, strike, sigma)
			chain = append(chain, quoteFromMid(optionType, strike, mid, rng))
		}
	}

	return chain, nil
}

// Close implements DataSource.
func (s *SyntheticDataSource) Close() error {
	return nil
}

// priceAt extends the memoized path of ticker up to index and returns the price there.
func (s *SyntheticDataSource) priceAt(ticker string, index int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.paths[ticker]
	if !ok {
		rng := rand.New(rand.NewSource(s.seedFor(ticker, time.Time{})))
		path = []float64{math.Round(s.config.InitialPrice*(0.8+rng.Float64()*0.4)*100) / 100}
	}

	drift := -0.5 * s.config.DailyVolatility * s.config.DailyVolatility
	for len(path) <= index {
		// seeded per step, independent of query order
		rng := rand.New(rand.NewSource(s.seedFor(ticker, s.config.Anchor.AddDate(0, 0, len(path)))))
		next := path[len(path)-1] * math.Exp(drift+s.config.DailyVolatility*rng.NormFloat64())
		path = append(path, math.Round(next*100)/100)
	}

	s.paths[ticker] = path

	return path[index]
}

func (s *SyntheticDataSource) missing(ticker string, day time.Time) bool {
	if s.config.MissingDataRate <= 0 {
		return false
	}

	rng := rand.New(rand.NewSource(s.seedFor(ticker, day) ^ 0x5bd1e995))

	return rng.Float64() < s.config.MissingDataRate
}

func (s *SyntheticDataSource) seedFor(ticker string, day time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ticker))
	_, _ = h.Write([]byte(day.Format("2006-01-02")))

	return s.config.Seed ^ int64(h.Sum64()&math.MaxInt64)
}

func isWeekend(day time.Time) bool {
	return day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
}

func strikeStep(spot float64) float64 {
	switch {
	case spot < 25:
		return 0.5
	case spot < 200:
		return 1
	default:
		return 5
	}
}

// premium is intrinsic value plus a time value that decays with distance from the money.
func premium(optionType types.OptionType, spot float64, strike float64, sigma float64) float64 {
	intrinsic := math.Max(0, spot-strike)
	if optionType == types.OptionTypePut {
		intrinsic = math.Max(0, strike-spot)
	}

	d := (strike - spot) / (spot * sigma)
	timeValue := 0.4 * spot * sigma * math.Exp(-0.5*d*d)

	return intrinsic + timeValue
}

func quoteFromMid(optionType types.OptionType, strike float64, mid float64, rng *rand.Rand) types.OptionQuote {
	spread := math.Max(0.02, mid*0.04)
	bid := math.Max(0.01, mid-spread/2)

	return types.OptionQuote{
		Strike:       strike,
		Bid:          math.Round(bid*100) / 100,
		Ask:          math.Round((bid+spread)*100) / 100,
		OptionType:   optionType,
		OpenInterest: optional.Some(int64(150 + rng.Intn(4000))),
		Volume:       optional.Some(int64(60 + rng.Intn(1500))),
	}
}
