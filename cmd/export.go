package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"radassist/internal/bootstrap"
	"radassist/internal/bootstrap/logging"
	"radassist/internal/errs"
	"radassist/internal/usecase/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored data as JSON, CSV, or XLSX",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		format, _ := cmd.Flags().GetString("format")
		dataset, _ := cmd.Flags().GetString("data")
		outPath, _ := cmd.Flags().GetString("out")

		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" {
			format = "json"
		}

		switch format {
		case "json":
			payload, err := svc.export.JSON(ctx)
			if err != nil {
				logging.Error(ctx, "build json export failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "build json export")
			}
			return writeExportPayload(cmd, outPath, append(payload, '\n'))
		case "csv":
			if dataset == "" {
				dataset = export.DatasetCalculations
			}
			payload, err := svc.export.CSV(ctx, dataset)
			if err != nil {
				logging.Error(ctx, "build csv export failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "build csv export")
			}
			return writeExportPayload(cmd, outPath, payload)
		case "xlsx":
			if strings.TrimSpace(outPath) == "" {
				return fmt.Errorf("--out is required for xlsx export")
			}
			if err := svc.export.XLSX(ctx, outPath); err != nil {
				logging.Error(ctx, "build xlsx export failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "build xlsx export")
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "workbook written: %s\n", outPath); err != nil {
				return errs.Wrap(err, "write export output")
			}
			return nil
		default:
			return fmt.Errorf("unsupported format %q (expected: json, csv, or xlsx)", format)
		}
	}),
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("format", "json", "Output format: json|csv|xlsx")
	exportCmd.Flags().String("data", "", "CSV dataset: calculations|references (default: calculations)")
	exportCmd.Flags().String("out", "", "Output file path (default: stdout; required for xlsx)")
}

func writeExportPayload(cmd *cobra.Command, outPath string, payload []byte) error {
	writer, closeFn, err := resolveExportWriter(cmd, outPath)
	if err != nil {
		return err
	}

	if _, err := writer.Write(payload); err != nil {
		_ = closeFn()
		return errs.Wrap(err, "write export output")
	}
	if err := closeFn(); err != nil {
		return errs.Wrap(err, "close export output")
	}
	return nil
}

func resolveExportWriter(cmd *cobra.Command, outPath string) (io.Writer, func() error, error) {
	trimmed := strings.TrimSpace(outPath)
	if trimmed == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	f, err := os.Create(trimmed)
	if err != nil {
		return nil, nil, errs.Wrapf(err, "open output file %q", trimmed)
	}
	return f, f.Close, nil
}
