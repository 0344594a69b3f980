package commission_fee

const (
	interactiveBrokerPerContract = 0.65
	interactiveBrokerMinimum     = 1.0
)

// InteractiveBrokerCommissionFee charges the tiered options rate: $0.65 per
// contract with a $1.00 minimum per order.
type InteractiveBrokerCommissionFee struct {
}

func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

func (c *InteractiveBrokerCommissionFee) Calculate(contracts int) float64 {
	fee := interactiveBrokerPerContract * float64(contracts)
	if fee < interactiveBrokerMinimum {
		return interactiveBrokerMinimum
	}

	return fee
}
