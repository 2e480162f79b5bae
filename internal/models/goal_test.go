package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seuros/nestegg/internal/metrics"
)

var goalColumns = []string{
	"id", "owner_id", "name", "goal", "current_savings", "monthly_savings", "monthly_income",
	"remaining", "progress", "months", "savings_rate", "created_at",
}

func newMockStore(t *testing.T) (*SQLGoalStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewGoalStore(db)
	store.newID = func() string { return "7f1c1b4e-8a6e-4c41-9a43-0c7d3b8f9e21" }
	store.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return store, mock
}

func TestInsertComputesDerivedFields(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO savings_goals").
		WithArgs("7f1c1b4e-8a6e-4c41-9a43-0c7d3b8f9e21", "owner-1", "Car",
			1000.0, 200.0, 100.0, 2000.0, 800.0, 20.0, 8.0, 5.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	g, err := store.Insert(context.Background(), "owner-1", "Car", metrics.Inputs{
		Target: 1000, Current: 200, MonthlyContribution: 100, MonthlyIncome: 2000,
	})
	require.NoError(t, err)

	assert.Equal(t, "owner-1", g.OwnerID)
	assert.Equal(t, 800.0, g.Remaining)
	assert.Equal(t, 20.0, g.Progress)
	assert.Equal(t, 8.0, g.Months)
	assert.Equal(t, 5.0, g.SavingsRate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertStoresNullMonthsWhenNoContribution(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO savings_goals").
		WithArgs(sqlmock.AnyArg(), "owner-1", "Trip",
			500.0, 0.0, 0.0, 0.0, 500.0, 0.0, nil, 0.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	g, err := store.Insert(context.Background(), "owner-1", "Trip", metrics.Inputs{Target: 500})
	require.NoError(t, err)
	assert.True(t, g.NeverReached())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPropagatesStorageError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO savings_goals").WillReturnError(assert.AnError)

	g, err := store.Insert(context.Background(), "owner-1", "Car", metrics.Inputs{Target: 1})
	require.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, g)
}

func TestListByOwner(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(goalColumns).
		AddRow("id-1", "owner-1", "Car", 1000.0, 200.0, 100.0, 2000.0, 800.0, 20.0, 8.0, 5.0, created).
		AddRow("id-2", "owner-1", "Trip", 500.0, 0.0, 0.0, 0.0, 500.0, 0.0, nil, 0.0, created)

	mock.ExpectQuery("SELECT (.+) FROM savings_goals WHERE owner_id = \\$1 ORDER BY created_at, id").
		WithArgs("owner-1").
		WillReturnRows(rows)

	goals, err := store.ListByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, goals, 2)

	assert.Equal(t, "Car", goals[0].Name)
	assert.Equal(t, 8.0, goals[0].Months)
	assert.True(t, goals[1].NeverReached())
	assert.Equal(t, metrics.Inputs{Target: 1000, Current: 200, MonthlyContribution: 100, MonthlyIncome: 2000}, goals[0].Inputs())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwnerEmptyReturnsEmptySlice(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM savings_goals").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(goalColumns))

	goals, err := store.ListByOwner(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, goals)
	assert.Empty(t, goals)
}

func TestListByOwnerQueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM savings_goals").WillReturnError(sql.ErrConnDone)

	_, err := store.ListByOwner(context.Background(), "owner-1")
	require.ErrorIs(t, err, sql.ErrConnDone)
}

func TestDeleteScopedToOwner(t *testing.T) {
	store, mock := newMockStore(t)
	id := "9b2d9a80-1b61-4a8f-8a51-6e0c1d2f3a4b"

	mock.ExpectExec("DELETE FROM savings_goals WHERE id = \\$1 AND owner_id = \\$2").
		WithArgs(id, "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := store.Delete(context.Background(), id, "owner-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteForeignGoalIsSilentNoop(t *testing.T) {
	store, mock := newMockStore(t)
	id := "9b2d9a80-1b61-4a8f-8a51-6e0c1d2f3a4b"

	mock.ExpectExec("DELETE FROM savings_goals").
		WithArgs(id, "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := store.Delete(context.Background(), id, "intruder")
	require.NoError(t, err)
	assert.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMalformedIDSkipsQuery(t *testing.T) {
	store, mock := newMockStore(t)

	deleted, err := store.Delete(context.Background(), "not-a-uuid", "owner-1")
	require.NoError(t, err)
	assert.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummarize(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "goal", "current", "monthly"}).
			AddRow(2, 1500.0, 700.0, 150.0))

	agg, err := store.Summarize(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, agg.GoalCount)
	assert.Equal(t, 800.0, agg.Remaining)
	assert.Equal(t, 46.67, agg.Progress)
	assert.Equal(t, 5.33, agg.Months)
}

func TestSummarizeNoGoalsIsEmptyAggregate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "goal", "current", "monthly"}).
			AddRow(0, 0.0, 0.0, 0.0))

	agg, err := store.Summarize(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, metrics.EmptyAggregate(), agg)
}

func TestGoalJSONEncodesInfiniteMonths(t *testing.T) {
	raw, err := json.Marshal(Goal{ID: "id-1", Name: "Trip", Months: math.Inf(1)})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"months":"Infinity"`)
	assert.Contains(t, string(raw), `"name":"Trip"`)
}

func TestSummarizeOverflowingSumIsInfinite(t *testing.T) {
	store, mock := newMockStore(t)

	huge := "2" + strings.Repeat("0", 308)
	mock.ExpectQuery("SUM\\(goal::numeric\\)").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "goal", "current", "monthly"}).
			AddRow(2, []byte(huge), []byte("0"), []byte("100")))

	agg, err := store.Summarize(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.True(t, math.IsInf(agg.TotalGoal, 1))
	assert.True(t, math.IsInf(agg.Remaining, 1))

	raw, err := json.Marshal(agg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total_goal":"Infinity"`)
}

func TestSummarizeRejectsGarbageSum(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "goal", "current", "monthly"}).
			AddRow(1, []byte("abc"), []byte("0"), []byte("0")))

	_, err := store.Summarize(context.Background(), "owner-1")
	require.Error(t, err)
}

func TestGoalJSONEncodesNonFiniteFigures(t *testing.T) {
	raw, err := json.Marshal(Goal{ID: "id-1", Goal: math.Inf(1), Remaining: math.Inf(-1), Progress: math.NaN()})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"goal":"Infinity"`)
	assert.Contains(t, string(raw), `"remaining":"-Infinity"`)
	assert.Contains(t, string(raw), `"progress":"NaN"`)
}
