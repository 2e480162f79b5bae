package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBasic(t *testing.T) {
	r := Calculate(Inputs{Target: 1000, Current: 200, MonthlyContribution: 100, MonthlyIncome: 2000})

	assert.Equal(t, 800.0, r.Remaining)
	assert.InDelta(t, 20.0, r.Progress, 1e-9)
	assert.Equal(t, 8.0, r.Months)
	assert.InDelta(t, 5.0, r.SavingsRate, 1e-9)
}

func TestCalculateProgressWithinBounds(t *testing.T) {
	targets := []float64{0.01, 1, 3, 999.99, 1e6}
	for _, target := range targets {
		for _, frac := range []float64{0, 0.1, 1.0 / 3, 0.5, 0.999, 1} {
			current := target * frac
			r := Calculate(Inputs{Target: target, Current: current})
			assert.GreaterOrEqual(t, r.Progress, 0.0)
			assert.LessOrEqual(t, r.Progress, 100.0+1e-9)
			assert.InDelta(t, current/target*100, r.Progress, 1e-9)
		}
	}
}

func TestCalculateZeroTargetHasZeroProgress(t *testing.T) {
	for _, current := range []float64{0, 10, 5000} {
		r := Calculate(Inputs{Target: 0, Current: current, MonthlyContribution: 10})
		assert.Equal(t, 0.0, r.Progress)
	}
}

func TestCalculateZeroContributionIsInfinite(t *testing.T) {
	r := Calculate(Inputs{Target: 1000, Current: 100, MonthlyContribution: 0, MonthlyIncome: 100})
	assert.True(t, math.IsInf(r.Months, 1))

	r = Calculate(Inputs{Target: 1000, Current: 100, MonthlyContribution: -5})
	assert.True(t, math.IsInf(r.Months, 1))
}

func TestCalculateZeroIncomeHasZeroSavingsRate(t *testing.T) {
	r := Calculate(Inputs{Target: 1000, MonthlyContribution: 100, MonthlyIncome: 0})
	assert.Equal(t, 0.0, r.SavingsRate)
}

func TestCalculateOverSavedIsNegative(t *testing.T) {
	r := Calculate(Inputs{Target: 500, Current: 600, MonthlyContribution: 50})
	assert.Equal(t, -100.0, r.Remaining)
	assert.Equal(t, -2.0, r.Months)
	assert.InDelta(t, 120.0, r.Progress, 1e-9)
}

func TestCalculateIsIdempotent(t *testing.T) {
	in := Inputs{Target: 1234.56, Current: 78.9, MonthlyContribution: 33.3, MonthlyIncome: 2100}
	assert.Equal(t, Calculate(in), Calculate(in))
	assert.Equal(t, Calculate(in).Rounded(), Calculate(in).Rounded())
}

func TestRounded(t *testing.T) {
	r := Calculate(Inputs{Target: 3, Current: 1, MonthlyContribution: 3, MonthlyIncome: 7}).Rounded()

	assert.Equal(t, 33.33, r.Progress)
	assert.Equal(t, 0.67, r.Months)
	assert.Equal(t, 42.86, r.SavingsRate)
	assert.Equal(t, 2.0, r.Remaining)

	// 1/800 is just below 0.125 in binary, so it rounds down.
	tiny := Calculate(Inputs{Target: 800, Current: 1}).Rounded()
	assert.Equal(t, 0.12, tiny.Progress)
	assert.Equal(t, 1.11, Round2(1.115))
	assert.Equal(t, 0.12, Round2(0.125))
	assert.Equal(t, 0.38, Round2(0.375))
}

func TestRound2PreservesSpecialValues(t *testing.T) {
	assert.True(t, math.IsInf(Round2(math.Inf(1)), 1))
	assert.True(t, math.IsNaN(Round2(math.NaN())))
	assert.Equal(t, 1.01, Round2(1.005000001))
	assert.Equal(t, -2.35, Round2(-2.345000001))
}

func TestSummarizeTwoGoals(t *testing.T) {
	agg := Summarize([]Inputs{
		{Target: 1000, Current: 200, MonthlyContribution: 100, MonthlyIncome: 2000},
		{Target: 500, Current: 500, MonthlyContribution: 50, MonthlyIncome: 1000},
	})

	assert.Equal(t, 2, agg.GoalCount)
	assert.Equal(t, 1500.0, agg.TotalGoal)
	assert.Equal(t, 700.0, agg.TotalCurrentSavings)
	assert.Equal(t, 150.0, agg.TotalMonthlySavings)
	assert.Equal(t, 800.0, agg.Remaining)
	assert.Equal(t, 46.67, agg.Progress)
	assert.Equal(t, 5.33, agg.Months)
}

func TestSummarizeEmptyUsesZeroMonths(t *testing.T) {
	agg := Summarize(nil)

	assert.True(t, agg.IsEmpty())
	assert.Equal(t, EmptyAggregate(), agg)
	assert.Equal(t, 0.0, agg.Months)
}

func TestSummarizeWithoutContributionIsInfinite(t *testing.T) {
	agg := Summarize([]Inputs{{Target: 100, Current: 10}})

	assert.False(t, agg.IsEmpty())
	assert.True(t, math.IsInf(agg.Months, 1))
}

func TestAggregateJSONRoundTripsInfinity(t *testing.T) {
	agg := FromTotals(1, 100, 10, 0)

	raw, err := json.Marshal(agg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"months":"Infinity"`)
	assert.Contains(t, string(raw), `"total_goal":100`)

	var decoded Aggregate
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, math.IsInf(decoded.Months, 1))
	assert.Equal(t, agg.TotalGoal, decoded.TotalGoal)
	assert.Equal(t, 1, decoded.GoalCount)
}

func TestAggregateUnmarshalRejectsUnknownMonthsString(t *testing.T) {
	var agg Aggregate
	err := json.Unmarshal([]byte(`{"months":"soon"}`), &agg)
	require.Error(t, err)
}

func TestAggregateJSONRoundTripsOverflow(t *testing.T) {
	agg := Summarize([]Inputs{
		{Target: 1e308, MonthlyContribution: 1},
		{Target: 1e308, Current: 1e308, MonthlyContribution: 1},
	})
	require.True(t, math.IsInf(agg.TotalGoal, 1))

	raw, err := json.Marshal(agg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total_goal":"Infinity"`)

	var decoded Aggregate
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, math.IsInf(decoded.TotalGoal, 1))
	assert.Equal(t, agg.TotalCurrentSavings, decoded.TotalCurrentSavings)
	assert.Equal(t, 2, decoded.GoalCount)
}

func TestFloatDecodesNonFiniteTokens(t *testing.T) {
	var f Float
	require.NoError(t, json.Unmarshal([]byte(`"-Infinity"`), &f))
	assert.True(t, math.IsInf(float64(f), -1))
	require.NoError(t, json.Unmarshal([]byte(`"NaN"`), &f))
	assert.True(t, math.IsNaN(float64(f)))
	require.NoError(t, json.Unmarshal([]byte(`12.5`), &f))
	assert.Equal(t, Float(12.5), f)
}
