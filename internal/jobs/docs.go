// Package jobs provides the scheduled background passes of the dispatch engine.
//
// Jobs run on github.com/robfig/cron/v3 through JobManager:
//
//	manager := jobs.NewJobManager(30*time.Second, logger,
//		jobs.Schedule{Spec: "*/10 * * * * *", Job: reassignment},
//		jobs.Schedule{Spec: "@every 5m", Job: stale},
//	)
//	if err := manager.StartAll(ctx); err != nil {
//		return err
//	}
//	defer manager.StopAll()
//
// # Available Jobs
//
//  1. ReassignmentJob retries courier assignment for ready orders that are still
//     unassigned, for example because no courier was online when they became ready.
//  2. StaleDeliveryJob logs orders that stayed out for delivery past a threshold.
//
// # Error Handling
//
// A failed run is logged and the schedule continues. Errors caused by shutdown
// cancelling the run context are not logged.
package jobs
