// Package metrics derives savings figures from raw goal inputs.
package metrics

import (
	"math"
	"strconv"
)

// Inputs are the four raw figures a user enters for a goal.
type Inputs struct {
	Target              float64 `json:"goal"`
	Current             float64 `json:"current_savings"`
	MonthlyContribution float64 `json:"monthly_savings"`
	MonthlyIncome       float64 `json:"monthly_income"`
}

// Result holds the derived figures for one set of inputs.
type Result struct {
	Remaining   float64 `json:"remaining"`
	Progress    float64 `json:"progress"`
	Months      float64 `json:"months"`
	SavingsRate float64 `json:"savings_rate"`
}

// Calculate derives remaining, progress, months-to-goal and savings rate.
// Remaining is not clamped, so over-saving yields a negative value. Months is
// +Inf when there is no monthly contribution.
func Calculate(in Inputs) Result {
	r := Result{Remaining: in.Target - in.Current}

	if in.Target > 0 {
		r.Progress = in.Current / in.Target * 100
	}
	if in.MonthlyContribution > 0 {
		r.Months = r.Remaining / in.MonthlyContribution
	} else {
		r.Months = math.Inf(1)
	}
	if in.MonthlyIncome > 0 {
		r.SavingsRate = in.MonthlyContribution / in.MonthlyIncome * 100
	}
	return r
}

// Rounded returns r with the percentage and months figures rounded to two
// decimals. Remaining keeps full precision.
func (r Result) Rounded() Result {
	r.Progress = Round2(r.Progress)
	r.Months = Round2(r.Months)
	r.SavingsRate = Round2(r.SavingsRate)
	return r
}

// Round2 rounds to two decimal places using the exact binary value, with
// exact ties going to the even digit. Infinities and NaN pass through
// unchanged.
func Round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
