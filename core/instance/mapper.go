package instance

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// ErrNoCatalog is returned when the mapper has no classes to choose from.
var ErrNoCatalog = errors.New("instance catalog is empty")

// reliabilityHeadroom is the minimum free-memory share reliability bias
// accepts before stepping up one class.
const reliabilityHeadroom = 0.10

// costBufferCeiling is the buffer factor cost bias presses down toward.
const costBufferCeiling = 1.1

// Policy tunes how a prediction maps onto the catalog.
type Policy struct {
	BufferFactor float64              // Memory safety multiplier
	Bias         schema.ProvisionBias // Under- vs over-provisioning trade-off
}

// DefaultPolicy is the balanced policy with the stock buffer.
func DefaultPolicy() Policy {
	return Policy{BufferFactor: contract.DefaultBufferFactor, Bias: schema.BalancedBias}
}

// Mapper selects instance classes from a catalog.
type Mapper struct {
	classes []schema.InstanceClass
}

// NewMapper returns a mapper over the static catalog.
func NewMapper() *Mapper {
	return &Mapper{classes: catalog}
}

// NewMapperWithCatalog returns a mapper over a custom catalog, which must be
// in ascending memory order.
func NewMapperWithCatalog(classes []schema.InstanceClass) *Mapper {
	return &Mapper{classes: classes}
}

// Select maps a prediction onto the smallest class whose memory covers the
// buffered demand. Selection is total: every prediction yields a class.
// Demand above the largest class selects it and sets AtCapacity; demand
// that is non-positive or NaN selects the smallest class.
func (m *Mapper) Select(pred schema.PredictionResult, policy Policy) (schema.SelectionResult, error) {
	if len(m.classes) == 0 {
		return schema.SelectionResult{}, ErrNoCatalog
	}

	factor := clampBuffer(policy.BufferFactor)
	if policy.Bias == schema.CostBias && factor > costBufferCeiling {
		factor = costBufferCeiling
	}

	buffered := pred.MemoryGB * factor

	idx := 0
	atCapacity := false
	switch {
	case math.IsNaN(buffered) || buffered <= 0:
		buffered = 0
	default:
		idx = -1
		for i, class := range m.classes {
			if class.MemoryGB >= buffered {
				idx = i
				break
			}
		}
		if idx == -1 {
			idx = len(m.classes) - 1
			atCapacity = true
		}
	}

	if policy.Bias == schema.ReliabilityBias && !atCapacity && buffered > 0 && idx+1 < len(m.classes) {
		capacity := m.classes[idx].MemoryGB
		if capacity > 0 && (capacity-buffered)/capacity < reliabilityHeadroom {
			idx++
		}
	}

	class := m.classes[idx]
	return schema.SelectionResult{
		Class:            class,
		Prediction:       pred,
		BufferFactor:     factor,
		BufferedMemoryGB: buffered,
		AtCapacity:       atCapacity,
		EstimatedCostUSD: EstimateCost(class, pred.TimeMinutes),
	}, nil
}

// EstimateCost scales the hourly rate by the predicted duration, rounded to
// four places. Non-positive durations cost zero.
func EstimateCost(class schema.InstanceClass, timeMinutes float64) decimal.Decimal {
	if timeMinutes <= 0 || math.IsNaN(timeMinutes) {
		return decimal.Zero
	}
	hours := decimal.NewFromFloat(timeMinutes).Div(decimal.NewFromInt(60))
	return class.HourlyUSD.Mul(hours).Round(4)
}

func clampBuffer(factor float64) float64 {
	if factor <= 0 || math.IsNaN(factor) {
		return contract.DefaultBufferFactor
	}
	if factor < contract.MinBufferFactor {
		return contract.MinBufferFactor
	}
	if factor > contract.MaxBufferFactor {
		return contract.MaxBufferFactor
	}
	return factor
}
