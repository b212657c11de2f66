package cmd

import (
	"bulk-manager/core/reconcile"
	"bulk-manager/feature/upsert"

	"github.com/spf13/cobra"
)

var upsertFlags runFlags

var upsertCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Create or update records from a CSV",
	Long: `Matches every CSV row to an existing record by natural key (lowercased name and
domain unless the mapping sets key_columns). Matching rows update the record, the others
create a new one. A create whose owner is unknown is retried once without the owner.

Examples:
  bulk-manager upsert --mapping companies.yaml --file companies.csv --dry-run
  bulk-manager upsert --mapping companies.yaml --file companies.csv --yes`,
	RunE: runUpsert,
}

func init() {
	upsertFlags.register(upsertCmd, true)
	RootCmd.AddCommand(upsertCmd)
}

func runUpsert(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	m, err := upsertFlags.loadMapping()
	if err != nil {
		return err
	}
	csv, err := upsertFlags.loadCSV()
	if err != nil {
		return err
	}
	e, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	svc := upsert.NewService(e.remote, e.remote, e.runner, e.log)
	plan, err := svc.Plan(ctx, csv, m)
	if err != nil {
		return err
	}
	printPlan(e.log, plan.Preview(e.cfg.Run.PreviewLimit))

	if !upsertFlags.confirm(e.log, plan) {
		return nil
	}
	report := svc.Execute(ctx, plan, reconcile.ExecuteOptions{Confirmed: true, OnProgress: progress(e.log)})
	return upsertFlags.finish(e.log, report, e.cfg.Run.FailureDisplayLimit)
}
