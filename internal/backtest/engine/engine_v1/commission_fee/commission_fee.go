package commission_fee

type CommissionFee interface {
	// Calculate returns the commission in USD for trading the given number of option contracts.
	Calculate(contracts int) float64
}

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerZero,
}

func GetCommissionFeeHandler(broker Broker) CommissionFee {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}

// RoundTrip returns the commission for opening and closing every leg of a
// position holding the given number of contracts per leg.
func RoundTrip(fee CommissionFee, legs int, contracts int) float64 {
	if legs <= 0 || contracts <= 0 {
		return 0
	}

	return 2 * float64(legs) * fee.Calculate(contracts)
}
