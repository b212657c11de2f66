package cmd

import (
	"bulk-manager/core/reconcile"
	"bulk-manager/feature/fieldcopy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fieldcopyFlags runFlags

var fieldcopyCmd = &cobra.Command{
	Use:   "fieldcopy",
	Short: "Copy one custom field into another across all entities",
	Long: `Lists every entity of the mapping's entity type, reads each rule's source and target
field and copies the source value into the target.

Examples:
  # Preview only
  bulk-manager fieldcopy --mapping rules.yaml --dry-run

  # Copy into empty targets without prompting
  bulk-manager fieldcopy --mapping rules.yaml --yes --report copy.csv`,
	RunE: runFieldcopy,
}

func init() {
	fieldcopyFlags.register(fieldcopyCmd, false)
	RootCmd.AddCommand(fieldcopyCmd)
}

func runFieldcopy(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	m, err := fieldcopyFlags.loadMapping()
	if err != nil {
		return err
	}
	e, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	svc := fieldcopy.NewService(e.remote, e.remote, e.runner, e.migrations, e.log)
	plan, err := svc.Plan(ctx, m)
	if err != nil {
		return err
	}
	printPlan(e.log, plan.Preview(e.cfg.Run.PreviewLimit))

	if !fieldcopyFlags.confirm(e.log, plan) {
		return nil
	}
	report, logs := svc.Execute(ctx, plan, m, reconcile.ExecuteOptions{Confirmed: true, OnProgress: progress(e.log)})
	for _, l := range logs {
		e.log.Info("Migration log",
			zap.String("id", l.ID),
			zap.String("source", l.SourceFieldID),
			zap.String("target", l.TargetFieldID),
			zap.String("status", string(l.Status)),
			zap.Int("updated", l.Updated),
			zap.Int("failed", l.Failed),
		)
	}
	return fieldcopyFlags.finish(e.log, report, e.cfg.Run.FailureDisplayLimit)
}
