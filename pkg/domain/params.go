package domain

// Privileged parameters exposed by a vault/strategy deployment.
const (
	ParamPerformanceFeeGovernance = "performanceFeeGovernance"
	ParamPerformanceFeeStrategist = "performanceFeeStrategist"
	ParamMin                      = "min"
)

// ParamSpec bounds the values a privileged toggle may be set to, in basis points.
type ParamSpec struct {
	Name string
	Min  uint64
	Max  uint64
}

// DefaultParams are the toggles driven by the simulation's parameter actors.
var DefaultParams = []ParamSpec{
	{Name: ParamPerformanceFeeGovernance, Min: 0, Max: 3_000},
	{Name: ParamPerformanceFeeStrategist, Min: 0, Max: 3_000},
	{Name: ParamMin, Min: 5_000, Max: MaxBps},
}
