package alerts

import (
	"fmt"

	"github.com/kesarlabs/milltrack-backend/pkg/config"
)

// Kind names a production advisory.
type Kind string

const (
	KindLowOilYield     Kind = "low_oil_yield"
	KindHighProcessLoss Kind = "high_process_loss"
	KindLongBreakdown   Kind = "long_breakdown"
	KindShortRuntime    Kind = "short_runtime"
)

// Alert is one advisory raised against a production entry. Alerts are
// informational; no operation is blocked by them.
type Alert struct {
	Kind    Kind
	Message string
}

// Metrics is the subset of production figures the advisories look at.
type Metrics struct {
	OilYieldPercent    float64
	ProcessLossPercent float64
	BreakdownMinutes   int
	RuntimeMinutes     int
}

// Evaluator checks production metrics against the configured thresholds.
type Evaluator struct {
	cfg config.AlertsConfig
}

func NewEvaluator(cfg config.AlertsConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate returns every advisory the metrics trip, in a fixed order.
func (e *Evaluator) Evaluate(m Metrics) []Alert {
	var out []Alert

	if m.OilYieldPercent < e.cfg.MinOilYieldPercent {
		out = append(out, Alert{
			Kind: KindLowOilYield,
			Message: fmt.Sprintf("oil yield %.2f%% is below the %.1f%% target",
				m.OilYieldPercent, e.cfg.MinOilYieldPercent),
		})
	}
	if m.ProcessLossPercent > e.cfg.MaxProcessLossPercent {
		out = append(out, Alert{
			Kind: KindHighProcessLoss,
			Message: fmt.Sprintf("process loss %.2f%% exceeds the %.1f%% limit",
				m.ProcessLossPercent, e.cfg.MaxProcessLossPercent),
		})
	}
	if m.BreakdownMinutes > e.cfg.MaxBreakdownMinutes {
		out = append(out, Alert{
			Kind: KindLongBreakdown,
			Message: fmt.Sprintf("breakdown of %d min exceeds the %d min limit",
				m.BreakdownMinutes, e.cfg.MaxBreakdownMinutes),
		})
	}
	if m.RuntimeMinutes < e.cfg.MinRuntimeMinutes {
		out = append(out, Alert{
			Kind: KindShortRuntime,
			Message: fmt.Sprintf("runtime of %d min is below the expected %d min",
				m.RuntimeMinutes, e.cfg.MinRuntimeMinutes),
		})
	}

	return out
}
