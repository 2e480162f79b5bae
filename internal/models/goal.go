package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/seuros/nestegg/internal/metrics"
)

// Goal is a persisted savings goal. The derived fields are a snapshot taken at
// insert time and are never recomputed on read.
type Goal struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	Goal           float64   `json:"goal"`
	CurrentSavings float64   `json:"current_savings"`
	MonthlySavings float64   `json:"monthly_savings"`
	MonthlyIncome  float64   `json:"monthly_income"`
	Remaining      float64   `json:"remaining"`
	Progress       float64   `json:"progress"`
	Months         float64   `json:"months"`
	SavingsRate    float64   `json:"savings_rate"`
	CreatedAt      time.Time `json:"created_at"`
}

type goalJSON struct {
	ID             string        `json:"id"`
	OwnerID        string        `json:"owner_id"`
	Name           string        `json:"name"`
	Goal           metrics.Float `json:"goal"`
	CurrentSavings metrics.Float `json:"current_savings"`
	MonthlySavings metrics.Float `json:"monthly_savings"`
	MonthlyIncome  metrics.Float `json:"monthly_income"`
	Remaining      metrics.Float `json:"remaining"`
	Progress       metrics.Float `json:"progress"`
	Months         metrics.Float `json:"months"`
	SavingsRate    metrics.Float `json:"savings_rate"`
	CreatedAt      time.Time     `json:"created_at"`
}

// MarshalJSON encodes non-finite figures as strings; an infinite Months
// becomes "Infinity".
func (g Goal) MarshalJSON() ([]byte, error) {
	return json.Marshal(goalJSON{
		ID:             g.ID,
		OwnerID:        g.OwnerID,
		Name:           g.Name,
		Goal:           metrics.Float(g.Goal),
		CurrentSavings: metrics.Float(g.CurrentSavings),
		MonthlySavings: metrics.Float(g.MonthlySavings),
		MonthlyIncome:  metrics.Float(g.MonthlyIncome),
		Remaining:      metrics.Float(g.Remaining),
		Progress:       metrics.Float(g.Progress),
		Months:         metrics.Float(g.Months),
		SavingsRate:    metrics.Float(g.SavingsRate),
		CreatedAt:      g.CreatedAt,
	})
}

// Inputs returns the raw figures the goal was created from.
func (g Goal) Inputs() metrics.Inputs {
	return metrics.Inputs{
		Target:              g.Goal,
		Current:             g.CurrentSavings,
		MonthlyContribution: g.MonthlySavings,
		MonthlyIncome:       g.MonthlyIncome,
	}
}

// NeverReached reports whether the goal has no monthly contribution.
func (g Goal) NeverReached() bool {
	return math.IsInf(g.Months, 1)
}

// GoalStore persists goals scoped by owner.
type GoalStore interface {
	Insert(ctx context.Context, ownerID, name string, in metrics.Inputs) (*Goal, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Goal, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
	Summarize(ctx context.Context, ownerID string) (metrics.Aggregate, error)
}

// SQLGoalStore is the Postgres-backed GoalStore.
type SQLGoalStore struct {
	db    *sql.DB
	newID func() string
	now   func() time.Time
}

// NewGoalStore returns a store over db.
func NewGoalStore(db *sql.DB) *SQLGoalStore {
	return &SQLGoalStore{
		db:    db,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Insert computes the derived fields and stores a new goal.
func (s *SQLGoalStore) Insert(ctx context.Context, ownerID, name string, in metrics.Inputs) (*Goal, error) {
	derived := metrics.Calculate(in).Rounded()

	g := &Goal{
		ID:             s.newID(),
		OwnerID:        ownerID,
		Name:           name,
		Goal:           in.Target,
		CurrentSavings: in.Current,
		MonthlySavings: in.MonthlyContribution,
		MonthlyIncome:  in.MonthlyIncome,
		Remaining:      derived.Remaining,
		Progress:       derived.Progress,
		Months:         derived.Months,
		SavingsRate:    derived.SavingsRate,
		CreatedAt:      s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO savings_goals
		   (id, owner_id, name, goal, current_savings, monthly_savings, monthly_income,
		    remaining, progress, months, savings_rate, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		g.ID, g.OwnerID, g.Name, g.Goal, g.CurrentSavings, g.MonthlySavings, g.MonthlyIncome,
		g.Remaining, g.Progress, monthsToNull(g.Months), g.SavingsRate, g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	return g, nil
}

// ListByOwner returns the owner's goals in insertion order.
func (s *SQLGoalStore) ListByOwner(ctx context.Context, ownerID string) ([]Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, goal, current_savings, monthly_savings, monthly_income,
		        remaining, progress, months, savings_rate, created_at
		 FROM savings_goals
		 WHERE owner_id = $1
		 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	goals := make([]Goal, 0)
	for rows.Next() {
		var (
			g      Goal
			months sql.NullFloat64
		)
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Goal, &g.CurrentSavings, &g.MonthlySavings,
			&g.MonthlyIncome, &g.Remaining, &g.Progress, &months, &g.SavingsRate, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Months = monthsFromNull(months)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// Delete removes the goal only when both id and owner match. A miss is not an
// error; the boolean reports whether a row was removed.
func (s *SQLGoalStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete goal: %w", err)
	}
	return n > 0, nil
}

// Summarize aggregates the owner's goals in a single statement. Sums are
// taken over numeric so very large goals overflow to +Inf instead of failing
// the query.
func (s *SQLGoalStore) Summarize(ctx context.Context, ownerID string) (metrics.Aggregate, error) {
	var (
		count                                 int
		sumGoal, sumCurrent, sumMonthly       string
		totalGoal, totalCurrent, totalMonthly float64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(goal::numeric), 0),
		        COALESCE(SUM(current_savings::numeric), 0),
		        COALESCE(SUM(monthly_savings::numeric), 0)
		 FROM savings_goals
		 WHERE owner_id = $1`, ownerID).Scan(&count, &sumGoal, &sumCurrent, &sumMonthly)
	if err != nil {
		return metrics.Aggregate{}, fmt.Errorf("summarize goals: %w", err)
	}
	for _, f := range []struct {
		raw string
		dst *float64
	}{{sumGoal, &totalGoal}, {sumCurrent, &totalCurrent}, {sumMonthly, &totalMonthly}} {
		if *f.dst, err = parseSum(f.raw); err != nil {
			return metrics.Aggregate{}, fmt.Errorf("summarize goals: %w", err)
		}
	}
	return metrics.FromTotals(count, totalGoal, totalCurrent, totalMonthly), nil
}

// parseSum converts a numeric sum to float64. Out-of-range sums become ±Inf.
func parseSum(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return v, nil
}

func monthsToNull(months float64) sql.NullFloat64 {
	if math.IsInf(months, 0) || math.IsNaN(months) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: months, Valid: true}
}

func monthsFromNull(months sql.NullFloat64) float64 {
	if !months.Valid {
		return math.Inf(1)
	}
	return months.Float64
}
