package cmd

import (
	"bulk-manager/core/reconcile"
	"bulk-manager/feature/bulkupdate"

	"github.com/spf13/cobra"
)

var bulkUpdateFlags runFlags

var bulkUpdateCmd = &cobra.Command{
	Use:   "bulk-update",
	Short: "Write custom field values from a CSV onto existing entities",
	Long: `Reads a CSV with a UUID column and one column per custom field and writes every
non-blank cell onto the entity with that UUID. Blank cells are never sent.

Set preserve_existing in the mapping to skip fields that already hold a value.

Examples:
  bulk-manager bulk-update --mapping scores.yaml --file scores.csv --dry-run
  bulk-manager bulk-update --mapping scores.yaml --file scores.csv --yes --report out.csv`,
	RunE: runBulkUpdate,
}

func init() {
	bulkUpdateFlags.register(bulkUpdateCmd, true)
	RootCmd.AddCommand(bulkUpdateCmd)
}

func runBulkUpdate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	m, err := bulkUpdateFlags.loadMapping()
	if err != nil {
		return err
	}
	csv, err := bulkUpdateFlags.loadCSV()
	if err != nil {
		return err
	}
	e, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	svc := bulkupdate.NewService(e.remote, e.remote, e.runner, e.log)
	plan, err := svc.Plan(ctx, csv, m)
	if err != nil {
		return err
	}
	printPlan(e.log, plan.Preview(e.cfg.Run.PreviewLimit))

	if !bulkUpdateFlags.confirm(e.log, plan) {
		return nil
	}
	report := svc.Execute(ctx, plan, reconcile.ExecuteOptions{Confirmed: true, OnProgress: progress(e.log)})
	return bulkUpdateFlags.finish(e.log, report, e.cfg.Run.FailureDisplayLimit)
}
