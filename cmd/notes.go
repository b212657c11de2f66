package cmd

import (
	"strings"

	"bulk-manager/core/reconcile"
	"bulk-manager/feature/notes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var notesFlags runFlags

var dedupeNotesCmd = &cobra.Command{
	Use:   "dedupe-notes",
	Short: "Delete duplicate notes, keeping one per set",
	Long: `Lists every note, groups notes with the same content, title and company and deletes
all but one note of each duplicate set. The earliest note with a company is kept.

Examples:
  # List duplicate sets
  bulk-manager dedupe-notes --dry-run

  # Delete without prompting
  bulk-manager dedupe-notes --yes`,
	RunE: runDedupeNotes,
}

func init() {
	notesFlags.register(dedupeNotesCmd, false)
	_ = dedupeNotesCmd.Flags().MarkHidden("mapping")
	RootCmd.AddCommand(dedupeNotesCmd)
}

func runDedupeNotes(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	e, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	svc := notes.NewService(e.remote, e.remote, e.runner, e.log)
	plan, err := svc.Plan(ctx)
	if err != nil {
		return err
	}
	printPlan(e.log, plan.Preview(e.cfg.Run.PreviewLimit))
	for i, g := range plan.Groups {
		if i >= e.cfg.Run.PreviewLimit {
			e.log.Info("Additional duplicate sets not shown", zap.Int("count", len(plan.Groups)-i))
			break
		}
		e.log.Info("Duplicate set",
			zap.String("title", g.Title),
			zap.String("company", g.CompanyID),
			zap.String("keep", g.Keep.ID),
			zap.String("delete", strings.Join(g.DeleteIDs(), ",")),
		)
	}

	if !notesFlags.confirm(e.log, plan.Plan) {
		return nil
	}
	report := svc.Execute(ctx, plan, reconcile.ExecuteOptions{Confirmed: true, OnProgress: progress(e.log)})
	return notesFlags.finish(e.log, report, e.cfg.Run.FailureDisplayLimit)
}
