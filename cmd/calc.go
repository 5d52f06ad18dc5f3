package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"radassist/internal/bootstrap"
	"radassist/internal/bootstrap/logging"
	"radassist/internal/errs"
	"radassist/internal/usecase/calculator"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Convert a fractionation scheme to BED and EQD2",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		doseText, _ := cmd.Flags().GetString("dose")
		fractionsText, _ := cmd.Flags().GetString("fractions")
		alphaBetaText, _ := cmd.Flags().GetString("alpha-beta")
		tissue, _ := cmd.Flags().GetString("tissue")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		req := calculator.Request{
			DoseText:      doseText,
			FractionsText: fractionsText,
			AlphaBetaText: alphaBetaText,
			Tissue:        tissue,
		}

		var result calculator.Result
		var err error
		if dryRun {
			result, err = svc.calculator.Compute(ctx, req)
		} else {
			result, err = svc.calculator.ComputeAndSave(ctx, req)
		}
		if err != nil {
			logging.Error(ctx, "dose conversion failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "convert dose")
		}

		if app.Degraded && !dryRun {
			if _, err := fmt.Fprintln(cmd.ErrOrStderr(), "warning: storage unavailable, this calculation will not persist"); err != nil {
				return errs.Wrap(err, "write degraded warning")
			}
		}

		return printCalcResult(cmd, result)
	}),
}

func printCalcResult(cmd *cobra.Command, result calculator.Result) error {
	calc := result.Calculation

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "metric\tvalue"); err != nil {
		return errs.Wrap(err, "write calc header")
	}
	if _, err := fmt.Fprintf(w, "dose_per_fraction_gy\t%s\n", formatGy(calc.Dose)); err != nil {
		return errs.Wrap(err, "write calc dose")
	}
	if _, err := fmt.Fprintf(w, "fractions\t%d\n", calc.Fractions); err != nil {
		return errs.Wrap(err, "write calc fractions")
	}
	if _, err := fmt.Fprintf(w, "alpha_beta_gy\t%s\n", formatGy(calc.AlphaBeta)); err != nil {
		return errs.Wrap(err, "write calc alpha/beta")
	}
	if calc.TissueLabel != "" {
		if _, err := fmt.Fprintf(w, "tissue\t%s\n", calc.TissueLabel); err != nil {
			return errs.Wrap(err, "write calc tissue")
		}
	}
	if _, err := fmt.Fprintf(w, "total_dose_gy\t%s\n", formatGy(result.TotalDose)); err != nil {
		return errs.Wrap(err, "write calc total dose")
	}
	if _, err := fmt.Fprintf(w, "bed_gy\t%s\n", formatGy(calc.BED)); err != nil {
		return errs.Wrap(err, "write calc bed")
	}
	if _, err := fmt.Fprintf(w, "eqd2_gy\t%s\n", formatGy(calc.EQD2)); err != nil {
		return errs.Wrap(err, "write calc eqd2")
	}
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush calc output")
	}

	if !result.Safety.Safe {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "\nwarning: %s\nrecommendation: %s\n", result.Safety.Warning, result.Safety.Recommendation); err != nil {
			return errs.Wrap(err, "write safety advisory")
		}
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", result.Explanation); err != nil {
		return errs.Wrap(err, "write alpha/beta explanation")
	}
	return nil
}

var calcLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the most recently saved calculator inputs",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		last, found, err := svc.calculator.LastInputs(ctx)
		if err != nil {
			logging.Error(ctx, "read last inputs failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "read last inputs")
		}
		if !found {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no previous inputs"); err != nil {
				return errs.Wrap(err, "write last inputs output")
			}
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "field\tvalue"); err != nil {
			return errs.Wrap(err, "write last inputs header")
		}
		if _, err := fmt.Fprintf(w, "dose\t%s\n", last.Dose); err != nil {
			return errs.Wrap(err, "write last inputs dose")
		}
		if _, err := fmt.Fprintf(w, "fractions\t%s\n", last.Fractions); err != nil {
			return errs.Wrap(err, "write last inputs fractions")
		}
		if _, err := fmt.Fprintf(w, "alpha_beta\t%s\n", last.AlphaBeta); err != nil {
			return errs.Wrap(err, "write last inputs alpha/beta")
		}
		if last.Tissue != "" {
			if _, err := fmt.Fprintf(w, "tissue\t%s\n", last.Tissue); err != nil {
				return errs.Wrap(err, "write last inputs tissue")
			}
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush last inputs output")
		}
		return nil
	}),
}

var calcHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved calculations, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		limit, _ := cmd.Flags().GetInt("limit")

		items, err := svc.calculator.History(ctx, limit)
		if err != nil {
			logging.Error(ctx, "list calculation history failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list calculation history")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "id\tdate\tdose\tfractions\talpha_beta\tbed\teqd2\ttissue"); err != nil {
			return errs.Wrap(err, "write history header")
		}
		for _, item := range items {
			if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
				item.ID,
				item.Date.UTC().Format(time.RFC3339),
				formatGy(item.Dose),
				item.Fractions,
				formatGy(item.AlphaBeta),
				formatGy(item.BED),
				formatGy(item.EQD2),
				item.TissueLabel,
			); err != nil {
				return errs.Wrap(err, "write history row")
			}
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush history output")
		}
		return nil
	}),
}

var calcStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show calculation history stats",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		stats, err := svc.calculator.Stats(ctx)
		if err != nil {
			logging.Error(ctx, "load calculation stats failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "load calculation stats")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "metric\tvalue"); err != nil {
			return errs.Wrap(err, "write stats header")
		}
		if _, err := fmt.Fprintf(w, "total\t%d\n", stats.Total); err != nil {
			return errs.Wrap(err, "write stats total")
		}
		if _, err := fmt.Fprintf(w, "today\t%d\n", stats.Today); err != nil {
			return errs.Wrap(err, "write stats today")
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush stats output")
		}

		if len(stats.Recent) > 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "\nrecent:"); err != nil {
				return errs.Wrap(err, "write stats recent header")
			}
			for _, item := range stats.Recent {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "  #%d %s: %s Gy x %d (BED %s, EQD2 %s)\n",
					item.ID,
					item.Date.UTC().Format("2006-01-02"),
					formatGy(item.Dose),
					item.Fractions,
					formatGy(item.BED),
					formatGy(item.EQD2),
				); err != nil {
					return errs.Wrap(err, "write stats recent row")
				}
			}
		}
		return nil
	}),
}

var calcDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one saved calculation",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, err := strconv.ParseUint(cmd.Flags().Arg(0), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid calculation id %q", cmd.Flags().Arg(0))
		}

		if err := svc.calculator.Delete(ctx, id); err != nil {
			logging.Error(ctx, "delete calculation failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "delete calculation")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "calculation %d deleted\n", id); err != nil {
			return errs.Wrap(err, "write delete output")
		}
		return nil
	}),
}

var calcClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved calculations",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		removed, err := svc.calculator.Clear(ctx)
		if err != nil {
			logging.Error(ctx, "clear calculation history failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "clear calculation history")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %d calculations\n", removed); err != nil {
			return errs.Wrap(err, "write clear output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.AddCommand(calcLastCmd)
	calcCmd.AddCommand(calcHistoryCmd)
	calcCmd.AddCommand(calcStatsCmd)
	calcCmd.AddCommand(calcDeleteCmd)
	calcCmd.AddCommand(calcClearCmd)

	calcCmd.Flags().String("dose", "", "Dose per fraction in Gy (decimal comma accepted)")
	calcCmd.Flags().String("fractions", "", "Number of fractions")
	calcCmd.Flags().String("alpha-beta", "", "Alpha/beta ratio in Gy (decimal comma accepted)")
	calcCmd.Flags().String("tissue", "", "Tissue name to resolve alpha/beta from the registry")
	calcCmd.Flags().Bool("dry-run", false, "Compute without saving to history")
	_ = calcCmd.MarkFlagRequired("dose")
	_ = calcCmd.MarkFlagRequired("fractions")

	calcHistoryCmd.Flags().Int("limit", 0, "Max rows to list (0 = all)")
}

func formatGy(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
