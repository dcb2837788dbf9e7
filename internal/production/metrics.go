package production

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/kesarlabs/milltrack-backend/pkg/errors"
)

const clockLayout = "15:04"

var (
	hundred    = decimal.NewFromInt(100)
	minutesPer = decimal.NewFromInt(60)
)

// Metrics holds the figures derived from one shift submission. They are
// computed once at record time and stored immutably on the entry.
type Metrics struct {
	RuntimeMinutes     int
	OilYieldPercent    float64
	CakeYieldPercent   float64
	ProcessLossPercent float64
	OilPerHourKG       float64
}

// runtimeMinutes computes elapsed shift minutes minus breakdown. A
// night shift ending past midnight reads as end < start, so 24h is
// added before subtracting.
func runtimeMinutes(startTime, endTime string, breakdownMinutes int) (int, error) {
	start, err := time.Parse(clockLayout, startTime)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid start time %q (expected HH:MM)", startTime))
	}
	end, err := time.Parse(clockLayout, endTime)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid end time %q (expected HH:MM)", endTime))
	}

	elapsed := int(end.Sub(start).Minutes())
	if elapsed < 0 {
		elapsed += 24 * 60
	}

	runtime := elapsed - breakdownMinutes
	if runtime <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidDuration,
			fmt.Sprintf("runtime of %d min after %d min breakdown is not a workable shift", elapsed, breakdownMinutes)).
			WithDetails(map[string]int{"elapsed": elapsed, "breakdown": breakdownMinutes})
	}
	return runtime, nil
}

// deriveMetrics reproduces the shift figures: yields are percentages of
// consumption, process loss is whatever the outputs leave unaccounted,
// and oil-per-hour spreads the oil output over the runtime.
func deriveMetrics(consumption, oil, cake decimal.Decimal, runtime int) Metrics {
	metrics := Metrics{RuntimeMinutes: runtime}

	if consumption.IsPositive() {
		oilYield := oil.Mul(hundred).Div(consumption)
		cakeYield := cake.Mul(hundred).Div(consumption)
		totalAccounted := oilYield.Add(cakeYield)

		metrics.OilYieldPercent = oilYield.Round(2).InexactFloat64()
		metrics.CakeYieldPercent = cakeYield.Round(2).InexactFloat64()
		metrics.ProcessLossPercent = hundred.Sub(totalAccounted).Round(2).InexactFloat64()
	}

	if runtime > 0 {
		perHour := oil.Mul(minutesPer).Div(decimal.NewFromInt(int64(runtime)))
		metrics.OilPerHourKG = perHour.Round(2).InexactFloat64()
	}

	return metrics
}
