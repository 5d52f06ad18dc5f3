package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"radassist/internal/bootstrap"
	"radassist/internal/bootstrap/logging"
	"radassist/internal/domain/reference"
	"radassist/internal/errs"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the reference registry audit trail",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		items, err := svc.registry.History(ctx, limit, offset)
		if err != nil {
			logging.Error(ctx, "list audit entries failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list audit entries")
		}
		return printAuditTable(cmd, items)
	}),
}

var auditRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "List audit entries within a time window",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		startRaw, _ := cmd.Flags().GetString("start")
		endRaw, _ := cmd.Flags().GetString("end")

		start, err := parseAuditFlagTime("start", startRaw)
		if err != nil {
			return err
		}
		end, err := parseAuditFlagTime("end", endRaw)
		if err != nil {
			return err
		}
		if !start.Before(end) {
			return fmt.Errorf("invalid time window: --start %q is not before --end %q", startRaw, endRaw)
		}

		items, err := svc.registry.HistoryRange(ctx, start, end)
		if err != nil {
			logging.Error(ctx, "query audit range failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "query audit range")
		}
		return printAuditTable(cmd, items)
	}),
}

var auditCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count audit entries",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		count, err := svc.registry.HistoryCount(ctx)
		if err != nil {
			logging.Error(ctx, "count audit entries failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "count audit entries")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\n", count); err != nil {
			return errs.Wrap(err, "write audit count output")
		}
		return nil
	}),
}

var auditTrimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Remove audit entries older than the retention horizon",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		days, _ := cmd.Flags().GetInt("days")

		removed, err := svc.registry.TrimHistory(ctx, days)
		if err != nil {
			logging.Error(ctx, "trim audit trail failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "trim audit trail")
		}

		effectiveDays := days
		if effectiveDays <= 0 {
			effectiveDays = app.Config.Audit.RetentionDays
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %d audit entries older than %d days\n", removed, effectiveDays); err != nil {
			return errs.Wrap(err, "write audit trim output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditRangeCmd)
	auditCmd.AddCommand(auditCountCmd)
	auditCmd.AddCommand(auditTrimCmd)

	auditListCmd.Flags().Int("limit", 50, "Max entries to list (0 = all)")
	auditListCmd.Flags().Int("offset", 0, "Entries to skip")

	auditRangeCmd.Flags().String("start", "", "Window start, inclusive (RFC3339 or YYYY-MM-DD)")
	auditRangeCmd.Flags().String("end", "", "Window end, exclusive (RFC3339 or YYYY-MM-DD)")
	_ = auditRangeCmd.MarkFlagRequired("start")
	_ = auditRangeCmd.MarkFlagRequired("end")

	auditTrimCmd.Flags().Int("days", 0, "Retention horizon in days (0 = configured default)")
}

func parseAuditFlagTime(flagName string, value string) (time.Time, error) {
	normalized := strings.TrimSpace(value)

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, normalized)
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --%s value %q: expected RFC3339 timestamp or YYYY-MM-DD date", flagName, normalized)
}

func printAuditTable(cmd *cobra.Command, items []reference.AuditEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "id\ttimestamp\taction\ttissue\talpha_beta\tprevious"); err != nil {
		return errs.Wrap(err, "write audit table header")
	}
	for _, item := range items {
		previous := ""
		if item.PreviousTissue != nil && item.PreviousAlphaBeta != nil {
			previous = fmt.Sprintf("%s (%s)", *item.PreviousTissue, formatGy(*item.PreviousAlphaBeta))
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.ID,
			item.Timestamp.UTC().Format(time.RFC3339),
			item.Action,
			item.Tissue,
			formatGy(item.AlphaBeta),
			previous,
		); err != nil {
			return errs.Wrap(err, "write audit table row")
		}
	}
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush audit table output")
	}
	return nil
}
