package metrics

import "encoding/json"

// Aggregate is the summed view of all goals owned by one session.
//
// The empty aggregate (no goals) reports Months as 0 rather than +Inf; views
// check IsEmpty and render it as a distinct state.
type Aggregate struct {
	GoalCount           int     `json:"goal_count"`
	TotalGoal           float64 `json:"total_goal"`
	TotalCurrentSavings float64 `json:"total_current_savings"`
	TotalMonthlySavings float64 `json:"total_monthly_savings"`
	Remaining           float64 `json:"remaining"`
	Progress            float64 `json:"progress"`
	Months              float64 `json:"months"`
}

// EmptyAggregate is the all-zero summary of a session with no goals.
func EmptyAggregate() Aggregate {
	return Aggregate{}
}

// IsEmpty reports whether the aggregate covers no goals.
func (a Aggregate) IsEmpty() bool {
	return a.GoalCount == 0
}

// Accumulator sums goal inputs one at a time.
type Accumulator struct {
	count   int
	target  float64
	current float64
	monthly float64
}

// Add folds one goal's inputs into the running totals.
func (acc *Accumulator) Add(in Inputs) {
	acc.count++
	acc.target += in.Target
	acc.current += in.Current
	acc.monthly += in.MonthlyContribution
}

// Aggregate derives the summary from the running totals.
func (acc *Accumulator) Aggregate() Aggregate {
	return FromTotals(acc.count, acc.target, acc.current, acc.monthly)
}

// Summarize aggregates a set of goal inputs.
func Summarize(inputs []Inputs) Aggregate {
	var acc Accumulator
	for _, in := range inputs {
		acc.Add(in)
	}
	return acc.Aggregate()
}

// FromTotals builds an aggregate from precomputed sums, applying the same
// rules Calculate uses for a single goal.
func FromTotals(count int, totalGoal, totalCurrent, totalMonthly float64) Aggregate {
	if count == 0 {
		return EmptyAggregate()
	}

	r := Calculate(Inputs{
		Target:              totalGoal,
		Current:             totalCurrent,
		MonthlyContribution: totalMonthly,
	})

	return Aggregate{
		GoalCount:           count,
		TotalGoal:           totalGoal,
		TotalCurrentSavings: totalCurrent,
		TotalMonthlySavings: totalMonthly,
		Remaining:           r.Remaining,
		Progress:            Round2(r.Progress),
		Months:              Round2(r.Months),
	}
}

type aggregateJSON struct {
	GoalCount           int   `json:"goal_count"`
	TotalGoal           Float `json:"total_goal"`
	TotalCurrentSavings Float `json:"total_current_savings"`
	TotalMonthlySavings Float `json:"total_monthly_savings"`
	Remaining           Float `json:"remaining"`
	Progress            Float `json:"progress"`
	Months              Float `json:"months"`
}

// MarshalJSON encodes non-finite figures as strings, since JSON has no
// literal for them. An unreachable goal reports months as "Infinity".
func (a Aggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(aggregateJSON{
		GoalCount:           a.GoalCount,
		TotalGoal:           Float(a.TotalGoal),
		TotalCurrentSavings: Float(a.TotalCurrentSavings),
		TotalMonthlySavings: Float(a.TotalMonthlySavings),
		Remaining:           Float(a.Remaining),
		Progress:            Float(a.Progress),
		Months:              Float(a.Months),
	})
}

// UnmarshalJSON accepts numbers or the non-finite string tokens.
func (a *Aggregate) UnmarshalJSON(data []byte) error {
	var aux aggregateJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Aggregate{
		GoalCount:           aux.GoalCount,
		TotalGoal:           float64(aux.TotalGoal),
		TotalCurrentSavings: float64(aux.TotalCurrentSavings),
		TotalMonthlySavings: float64(aux.TotalMonthlySavings),
		Remaining:           float64(aux.Remaining),
		Progress:            float64(aux.Progress),
		Months:              float64(aux.Months),
	}
	return nil
}
