package utils

import (
	"math"

	"github.com/rxtech-lab/argo-options/internal/backtest/engine/engine_v1/commission_fee"
)

// ContractMultiplier is the number of shares controlled by one equity option contract.
const ContractMultiplier = 100

// CalculateContracts returns how many structures with the given per-share max loss
// fit into capital, after paying the round-trip commission for every leg.
// At least one contract is always opened.
func CalculateContracts(capital float64, maxLoss float64, legs int, commissionFee commission_fee.CommissionFee) int {
	if capital <= 0 || maxLoss <= 0 {
		return 1
	}

	riskPerContract := maxLoss * ContractMultiplier

	contracts := int(math.Floor(capital / riskPerContract))
	for contracts > 1 {
		totalRisk := float64(contracts)*riskPerContract + commission_fee.RoundTrip(commissionFee, legs, contracts)
		if totalRisk <= capital {
			break
		}

		contracts--
	}

	if contracts < 1 {
		return 1
	}

	return contracts
}
