package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runFlags are shared by every engine command.
type runFlags struct {
	mappingPath string
	csvPath     string
	yes         bool
	dryRun      bool
	reportPath  string
}

func (f *runFlags) register(cmd *cobra.Command, withCSV bool) {
	cmd.Flags().StringVarP(&f.mappingPath, "mapping", "m", "", "Mapping file (YAML)")
	if withCSV {
		cmd.Flags().StringVarP(&f.csvPath, "file", "f", "", "CSV upload")
		_ = cmd.MarkFlagRequired("file")
	}
	cmd.Flags().BoolVar(&f.yes, "yes", false, "Auto-confirm the run (non-interactive)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Preview only; never write even with --yes")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "Write the CSV report to this file")
}

func (f *runFlags) loadMapping() (mapping.Mapping, error) {
	if f.mappingPath == "" {
		return mapping.Mapping{}, fmt.Errorf("%w: --mapping is required", mapping.ErrInvalid)
	}
	return mapping.Load(f.mappingPath)
}

func (f *runFlags) loadCSV() (string, error) {
	data, err := os.ReadFile(f.csvPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.csvPath, err)
	}
	return string(data), nil
}

// signalContext is cancelled on SIGINT or SIGTERM so a run stops at the next item.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// printPlan logs the plan summary and a sample of items.
func printPlan(l *zap.Logger, preview reconcile.Preview) {
	l.Info("Plan",
		zap.String("engine", preview.Engine),
		zap.Int("total", preview.Summary.Total),
		zap.Int("calls", preview.Summary.Calls),
		zap.Int("field_errors", preview.Summary.FieldErrors),
		zap.Bool("partial", preview.Partial),
	)
	for _, action := range preview.Summary.Actions() {
		l.Info("Planned action", zap.String("action", string(action)), zap.Int("count", preview.Summary.Counts[action]))
	}
	for _, w := range preview.Warnings {
		l.Warn("Plan warning", zap.String("warning", w))
	}

	maxShow := 5
	for i, item := range preview.Sample {
		if i >= maxShow {
			break
		}
		l.Info("Sample item",
			zap.String("ref", item.Ref),
			zap.String("label", item.Label),
			zap.String("action", string(item.Action)),
			zap.String("reason", item.Reason),
		)
	}
	if shown := min(maxShow, len(preview.Sample)); preview.Summary.Total > shown {
		l.Info("Additional items not shown", zap.Int("count", preview.Summary.Total-shown))
	}
}

// confirm decides whether the plan may run: never on a dry run, always with --yes, and
// otherwise only when the user types yes.
func (f *runFlags) confirm(l *zap.Logger, plan *reconcile.Plan) bool {
	if f.dryRun {
		l.Info("Dry-run mode: no changes were made.")
		return false
	}
	if plan.Summary.Calls == 0 {
		l.Info("Nothing to write.")
		return false
	}
	if f.yes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  %d remote writes planned. Type 'yes' to confirm: ", plan.Summary.Calls)
	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	if strings.TrimSpace(response) != "yes" {
		l.Warn("Operation cancelled by user. No changes were made.")
		return false
	}
	return true
}

// progress logs every tenth item and the last one.
func progress(l *zap.Logger) func(reconcile.Progress) {
	return func(p reconcile.Progress) {
		if p.Current%10 == 0 || p.Current == p.Total {
			l.Info("Progress", zap.Int("current", p.Current), zap.Int("total", p.Total))
		}
	}
}

// finish logs the run summary and writes the report file when requested.
func (f *runFlags) finish(l *zap.Logger, report *reconcile.Report, failureLimit int) error {
	summary := report.Summarize(failureLimit)
	l.Info("Run summary",
		zap.String("run_id", summary.RunID),
		zap.String("state", string(summary.State)),
		zap.Int("created", summary.Counts.Created),
		zap.Int("updated", summary.Counts.Updated),
		zap.Int("deleted", summary.Counts.Deleted),
		zap.Int("skipped", summary.Counts.Skipped),
		zap.Int("failed", summary.Counts.Failed),
		zap.String("archived", summary.Archived),
	)
	for _, msg := range summary.Failures {
		l.Warn("Failure", zap.String("detail", msg))
	}
	if summary.MoreFailures > 0 {
		l.Warn("Additional failures in the report", zap.Int("count", summary.MoreFailures))
	}

	if f.reportPath != "" {
		out, err := os.Create(f.reportPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer out.Close()
		if err := report.WriteCSV(out); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		l.Info("Report written", zap.String("path", f.reportPath))
	}

	if report.State == reconcile.RunAborted {
		return fmt.Errorf("run %s aborted after %d of %d items", report.RunID, report.Counts.Processed, report.Total)
	}
	return nil
}
