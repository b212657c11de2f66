// Package reconcile is the engine shared by every bulk operation: it drains remote
// listings, turns policy output into previewable plans, executes plans against a sink and
// aggregates the outcome into exportable reports.
//
// Every engine follows the same cycle:
//
//	fetch-all -> classify -> (confirm) -> execute -> report
//
// # Components
//
//   - Pager (FetchAll): follows cursors or next links page by page until exhausted.
//     A failing first page is fatal (SourceUnavailableError); a later failure keeps the
//     records gathered so far and flags the listing as partial.
//   - Batch reads (BatchFieldValues, Snapshot): read-only lookups run with bounded
//     parallelism. Writes are never parallel.
//   - Plan and Preview: pure aggregation of classified items. Preview truncates for
//     display; Execute always processes the whole plan.
//   - Execute: strictly sequential, throttled every BatchSize calls, isolated per item,
//     cancellable between items.
//   - Report: counts, subcategories, failure listing and CSV export (optionally uploaded
//     to object storage).
//
// Policies live in feature packages. They classify into Items and provide an Applier that
// performs one mutation per item through a Sink.
//
// # Usage Example
//
//	plan := reconcile.NewPlan("fieldcopy", items)
//	preview := plan.Preview(cfg.PreviewLimit)
//	run := reconcile.Execute(ctx, plan, applier, reconcile.ExecuteOptions{
//	    Confirmed: true,
//	    BatchSize: cfg.BatchSize,
//	    Delay:     cfg.WriteDelay(),
//	})
//	report := reconcile.BuildReport(run)
package reconcile
