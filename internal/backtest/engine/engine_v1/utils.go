package engine

import (
	"fmt"
	"path/filepath"
)

// getResultFolder returns <results>/<strategy>/<start>_<end>/<run id>.
func getResultFolder(b *BacktestEngineV1, runID string) string {
	strategyFolder := filepath.Join(b.resultsFolder, string(b.config.Strategy))
	timeRange := fmt.Sprintf("%s_%s", b.config.StartDate.Format("20060102"), b.config.EndDate.Format("20060102"))

	return filepath.Join(strategyFolder, timeRange, runID)
}
