package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seuros/nestegg/internal/database"
	"github.com/seuros/nestegg/internal/metrics"
	"github.com/seuros/nestegg/internal/models"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Inspect and manage stored savings goals",
	Long: `Inspect and manage stored savings goals.

Goals belong to an anonymous owner id (the id in a visitor's session), so every
command needs --owner.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Goals command flags
var (
	goalsOwner  string
	goalsFormat string
)

var goalsListCmd = &cobra.Command{
	Use:   "list --owner <id> [--format table|json]",
	Short: "List an owner's goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGoalStore(cmd.Context(), func(ctx context.Context, store models.GoalStore) error {
			return runGoalsList(ctx, store, cmd.OutOrStdout(), goalsOwner, goalsFormat)
		})
	},
}

var goalsSummaryCmd = &cobra.Command{
	Use:   "summary --owner <id> [--format table|json]",
	Short: "Show the aggregate across an owner's goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGoalStore(cmd.Context(), func(ctx context.Context, store models.GoalStore) error {
			return runGoalsSummary(ctx, store, cmd.OutOrStdout(), goalsOwner, goalsFormat)
		})
	},
}

var goalsDeleteCmd = &cobra.Command{
	Use:   "delete <goal-id> --owner <id>",
	Short: "Delete one of an owner's goals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGoalStore(cmd.Context(), func(ctx context.Context, store models.GoalStore) error {
			return runGoalsDelete(ctx, store, cmd.OutOrStdout(), args[0], goalsOwner)
		})
	},
}

func withGoalStore(parent context.Context, fn func(ctx context.Context, store models.GoalStore) error) error {
	if parent == nil {
		parent = context.Background()
	}

	// Ensure database is connected
	if database.DB == nil {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := database.Connect(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer func() { _ = database.Close() }()
	}

	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	return fn(ctx, models.NewGoalStore(database.DB))
}

func runGoalsList(ctx context.Context, store models.GoalStore, w io.Writer, owner, format string) error {
	if owner == "" {
		return errOwnerRequired
	}
	goals, err := store.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}

	switch format {
	case "", "table":
		return outputGoalsTable(w, goals)
	case "json":
		return outputJSON(w, goals)
	default:
		return fmt.Errorf("invalid format: %s", format)
	}
}

func runGoalsSummary(ctx context.Context, store models.GoalStore, w io.Writer, owner, format string) error {
	if owner == "" {
		return errOwnerRequired
	}
	overall, err := store.Summarize(ctx, owner)
	if err != nil {
		return err
	}

	switch format {
	case "", "table":
		return outputSummaryTable(w, overall)
	case "json":
		return outputJSON(w, overall)
	default:
		return fmt.Errorf("invalid format: %s", format)
	}
}

func runGoalsDelete(ctx context.Context, store models.GoalStore, w io.Writer, id, owner string) error {
	if owner == "" {
		return errOwnerRequired
	}
	deleted, err := store.Delete(ctx, id, owner)
	if err != nil {
		return err
	}
	if !deleted {
		_, _ = fmt.Fprintf(w, "No goal %s owned by %s\n", id, owner)
		return nil
	}
	_, _ = fmt.Fprintf(w, "✓ Deleted goal %s\n", id)
	return nil
}

var errOwnerRequired = errors.New("--owner is required")

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputGoalsTable(w io.Writer, goals []models.Goal) error {
	if len(goals) == 0 {
		_, _ = fmt.Fprintln(w, "No goals found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "ID\tNAME\tGOAL\tSAVED\tPROGRESS\tMONTHS\tCREATED AT")
	_, _ = fmt.Fprintln(tw, "--\t----\t----\t-----\t--------\t------\t----------")

	for _, g := range goals {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f%%\t%s\t%s\n",
			g.ID,
			g.Name,
			g.Goal,
			g.CurrentSavings,
			g.Progress,
			formatMonths(g.Months),
			g.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	return nil
}

func outputSummaryTable(w io.Writer, a metrics.Aggregate) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintf(tw, "Goals:\t%d\n", a.GoalCount)
	_, _ = fmt.Fprintf(tw, "Total goal:\t%.2f\n", a.TotalGoal)
	_, _ = fmt.Fprintf(tw, "Total saved:\t%.2f\n", a.TotalCurrentSavings)
	_, _ = fmt.Fprintf(tw, "Monthly savings:\t%.2f\n", a.TotalMonthlySavings)
	_, _ = fmt.Fprintf(tw, "Remaining:\t%.2f\n", a.Remaining)
	_, _ = fmt.Fprintf(tw, "Progress:\t%.2f%%\n", a.Progress)
	_, _ = fmt.Fprintf(tw, "Months to goal:\t%s\n", formatMonths(a.Months))
	return nil
}

func formatMonths(m float64) string {
	if tok, ok := metrics.NonFiniteToken(m); ok {
		return tok
	}
	return strconv.FormatFloat(m, 'f', 2, 64)
}

func init() {
	goalsCmd.PersistentFlags().StringVar(&goalsOwner, "owner", "", "Owner id the goals belong to")
	goalsListCmd.Flags().StringVarP(&goalsFormat, "format", "f", "table", "Output format (table, json)")
	goalsSummaryCmd.Flags().StringVarP(&goalsFormat, "format", "f", "table", "Output format (table, json)")

	goalsCmd.AddCommand(goalsListCmd)
	goalsCmd.AddCommand(goalsSummaryCmd)
	goalsCmd.AddCommand(goalsDeleteCmd)
	RootCmd.AddCommand(goalsCmd)
}
