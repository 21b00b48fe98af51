package engine

import (
	"fmt"
	"math"

	"github.com/kashyapn/inrhedge/internal/domain"
)

// HedgeConfig holds the futures contract parameters. ContractSize (USD
// notional per contract) and PointValue (INR P&L per 1.0 rate move per
// contract) both default to 1,000 and usually move together, but they are
// separate knobs: exchanges have re-specified one without the other.
type HedgeConfig struct {
	ContractSize float64
	PointValue   float64
}

// DefaultHedgeConfig returns the standard USDINR futures contract: $1,000
// notional, ₹1,000 per point.
func DefaultHedgeConfig() HedgeConfig {
	return HedgeConfig{
		ContractSize: 1000,
		PointValue:   1000,
	}
}

// ContractsNeeded sizes a futures hedge for a USD investment amount as the
// nearest whole number of contracts. Ties round half away from zero
// (math.Round), so an exact half-contract boundary rounds up: 11.5 -> 12.
func ContractsNeeded(investmentUSD, contractSize float64) (int, error) {
	if investmentUSD <= 0 {
		return 0, fmt.Errorf("engine: non-positive investment %.2f: %w", investmentUSD, domain.ErrInvalidInput)
	}
	if contractSize <= 0 {
		return 0, fmt.Errorf("engine: non-positive contract size %.2f: %w", contractSize, domain.ErrInvalidInput)
	}
	return int(math.Round(investmentUSD / contractSize)), nil
}

// FuturesPnL returns the INR mark-to-market P&L of holding a long USDINR
// futures position from entryRate to exitRate:
//
//	(exitRate - entryRate) * pointValue * contracts
//
// The position is long by design: buying an INR bond with USD leaves the
// investor structurally short USD, so a long USDINR position gains when the
// rupee depreciates (rate rises) and offsets the currency loss on the bond.
func FuturesPnL(entryRate, exitRate, pointValue float64, contracts int) float64 {
	return (exitRate - entryRate) * pointValue * float64(contracts)
}
