// Package instance maps resource predictions onto the provisioning catalog.
package instance

import (
	"github.com/shopspring/decimal"

	"github.com/sizeup-ci/sizeup/schema"
)

// catalog is the static instance catalog in ascending memory order. The
// mapper walks it smallest-first, so the order is load-bearing.
var catalog = []schema.InstanceClass{
	{Name: "nano", InstanceType: "t3.micro", MemoryGB: 1, CPUCount: 2, ExecutorSlots: 1, AgentLabel: "builder-nano", HourlyUSD: usd("0.0104")},
	{Name: "small", InstanceType: "t3.small", MemoryGB: 2, CPUCount: 2, ExecutorSlots: 1, AgentLabel: "builder-small", HourlyUSD: usd("0.0208")},
	{Name: "medium", InstanceType: "t3.medium", MemoryGB: 4, CPUCount: 2, ExecutorSlots: 2, AgentLabel: "builder-medium", HourlyUSD: usd("0.0416")},
	{Name: "large", InstanceType: "t3.large", MemoryGB: 8, CPUCount: 2, ExecutorSlots: 2, AgentLabel: "builder-large", HourlyUSD: usd("0.0832")},
	{Name: "xlarge", InstanceType: "t3.xlarge", MemoryGB: 16, CPUCount: 4, ExecutorSlots: 4, AgentLabel: "builder-xlarge", HourlyUSD: usd("0.1664")},
	{Name: "2xlarge", InstanceType: "t3.2xlarge", MemoryGB: 32, CPUCount: 8, ExecutorSlots: 4, AgentLabel: "builder-2xlarge", HourlyUSD: usd("0.3328")},
}

func usd(rate string) decimal.Decimal {
	return decimal.RequireFromString(rate)
}

// Classes returns a copy of the catalog in ascending memory order.
func Classes() []schema.InstanceClass {
	out := make([]schema.InstanceClass, len(catalog))
	copy(out, catalog)
	return out
}

// ByName looks up a catalog entry by its label.
func ByName(name string) (schema.InstanceClass, bool) {
	for _, class := range catalog {
		if class.Name == name {
			return class, true
		}
	}
	return schema.InstanceClass{}, false
}
