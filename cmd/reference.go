package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"radassist/internal/bootstrap"
	"radassist/internal/bootstrap/logging"
	"radassist/internal/domain/reference"
	"radassist/internal/errs"
	"radassist/internal/usecase/registry"
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Manage the tissue alpha/beta reference registry",
}

var referenceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tissue references",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		items, err := svc.registry.List(ctx)
		if err != nil {
			logging.Error(ctx, "list references failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list references")
		}
		return printReferenceTable(cmd, items)
	}),
}

var referenceSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search tissue references by name or description",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		items, err := svc.registry.Search(ctx, cmd.Flags().Arg(0))
		if err != nil {
			logging.Error(ctx, "search references failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "search references")
		}
		return printReferenceTable(cmd, items)
	}),
}

var referenceShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one tissue reference with its citations",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, err := parseReferenceID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}

		item, err := svc.registry.ByID(ctx, id)
		if err != nil {
			logging.Error(ctx, "load reference failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "load reference")
		}
		if item == nil {
			return fmt.Errorf("reference %d not found", id)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "field\tvalue"); err != nil {
			return errs.Wrap(err, "write reference header")
		}
		if _, err := fmt.Fprintf(w, "id\t%d\n", item.ID); err != nil {
			return errs.Wrap(err, "write reference id")
		}
		if _, err := fmt.Fprintf(w, "tissue\t%s\n", item.Tissue); err != nil {
			return errs.Wrap(err, "write reference tissue")
		}
		if _, err := fmt.Fprintf(w, "alpha_beta_gy\t%s\n", formatGy(item.AlphaBeta)); err != nil {
			return errs.Wrap(err, "write reference alpha/beta")
		}
		if _, err := fmt.Fprintf(w, "description\t%s\n", item.Description); err != nil {
			return errs.Wrap(err, "write reference description")
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush reference output")
		}

		if len(item.Citations) > 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "\ncitations:"); err != nil {
				return errs.Wrap(err, "write citations header")
			}
			for _, c := range item.Citations {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d) %s\n", c.Title, c.Year, c.URL); err != nil {
					return errs.Wrap(err, "write citation row")
				}
			}
		}
		return nil
	}),
}

var referenceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a tissue reference",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		input, err := referenceInputFromFlags(cmd)
		if err != nil {
			return err
		}

		created, err := svc.registry.Add(ctx, input)
		if err != nil {
			logging.Error(ctx, "add reference failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "add reference")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "reference %d added: %s (alpha/beta %s)\n", created.ID, created.Tissue, formatGy(created.AlphaBeta)); err != nil {
			return errs.Wrap(err, "write add output")
		}
		return nil
	}),
}

var referenceUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a tissue reference",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, err := parseReferenceID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		input, err := referenceInputFromFlags(cmd)
		if err != nil {
			return err
		}

		updated, err := svc.registry.Update(ctx, id, input)
		if err != nil {
			logging.Error(ctx, "update reference failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update reference")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "reference %d updated: %s (alpha/beta %s)\n", updated.ID, updated.Tissue, formatGy(updated.AlphaBeta)); err != nil {
			return errs.Wrap(err, "write update output")
		}
		return nil
	}),
}

var referenceDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a tissue reference",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, err := parseReferenceID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}

		if err := svc.registry.Delete(ctx, id); err != nil {
			logging.Error(ctx, "delete reference failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "delete reference")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "reference %d deleted\n", id); err != nil {
			return errs.Wrap(err, "write delete output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(referenceCmd)
	referenceCmd.AddCommand(referenceListCmd)
	referenceCmd.AddCommand(referenceSearchCmd)
	referenceCmd.AddCommand(referenceShowCmd)
	referenceCmd.AddCommand(referenceAddCmd)
	referenceCmd.AddCommand(referenceUpdateCmd)
	referenceCmd.AddCommand(referenceDeleteCmd)

	for _, c := range []*cobra.Command{referenceAddCmd, referenceUpdateCmd} {
		c.Flags().String("tissue", "", "Tissue name (unique, case-insensitive)")
		c.Flags().String("alpha-beta", "", "Alpha/beta ratio in Gy (decimal comma accepted)")
		c.Flags().String("description", "", "Free-text description")
		c.Flags().StringArray("citation", nil, "Citation as title|year|url (repeatable)")
		_ = c.MarkFlagRequired("tissue")
		_ = c.MarkFlagRequired("alpha-beta")
	}
}

func parseReferenceID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid reference id %q", raw)
	}
	return id, nil
}

func referenceInputFromFlags(cmd *cobra.Command) (registry.Input, error) {
	tissue, _ := cmd.Flags().GetString("tissue")
	alphaBetaText, _ := cmd.Flags().GetString("alpha-beta")
	description, _ := cmd.Flags().GetString("description")
	citationFlags, _ := cmd.Flags().GetStringArray("citation")

	alphaBeta, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(alphaBetaText), ",", "."), 64)
	if err != nil {
		return registry.Input{}, fmt.Errorf("invalid --alpha-beta value %q", alphaBetaText)
	}

	citations := make([]reference.Citation, 0, len(citationFlags))
	for _, raw := range citationFlags {
		citation, err := parseCitation(raw)
		if err != nil {
			return registry.Input{}, err
		}
		citations = append(citations, citation)
	}

	return registry.Input{
		Tissue:      tissue,
		AlphaBeta:   alphaBeta,
		Description: description,
		Citations:   citations,
	}, nil
}

func parseCitation(raw string) (reference.Citation, error) {
	parts := strings.SplitN(raw, "|", 3)
	if len(parts) < 2 {
		return reference.Citation{}, fmt.Errorf("invalid --citation value %q: expected title|year or title|year|url", raw)
	}

	year, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return reference.Citation{}, fmt.Errorf("invalid citation year in %q", raw)
	}

	citation := reference.Citation{
		Title: strings.TrimSpace(parts[0]),
		Year:  year,
	}
	if len(parts) == 3 {
		citation.URL = strings.TrimSpace(parts[2])
	}
	return citation, nil
}

func printReferenceTable(cmd *cobra.Command, items []reference.TissueReference) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "id\ttissue\talpha_beta\tdescription"); err != nil {
		return errs.Wrap(err, "write reference table header")
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", item.ID, item.Tissue, formatGy(item.AlphaBeta), item.Description); err != nil {
			return errs.Wrap(err, "write reference table row")
		}
	}
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush reference table output")
	}
	return nil
}
