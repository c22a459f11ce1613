package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/taller-iot/marcaje/pkg/utils/logging"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("MARCAJE_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("MARCAJE_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			indexConfig := getIndexConfig()

			client, err := fireconf.NewClient(ctx, projectID, databaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				plan, err := client.GetMigrationPlan(ctx, indexConfig)
				if err != nil {
					return goerr.Wrap(err, "failed to create migration plan")
				}

				if len(plan.Steps) == 0 {
					logger.Info("No changes required")
					return nil
				}

				for _, step := range plan.Steps {
					logger.Info("Migration step",
						"collection", step.Collection,
						"operation", step.Operation,
						"description", step.Description,
						"destructive", step.Destructive)
				}
			} else {
				logger.Info("Applying migrations")
				if err := client.Migrate(ctx, indexConfig); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Migrations applied successfully")
			}

			return nil
		},
	}
}

// getIndexConfig returns the composite indexes the repository queries need.
// Collection names here assume no collection prefix; prefixed deployments
// must create the equivalent indexes under their prefixed names.
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "attendance",
				Indexes: []fireconf.Index{
					// FindActive / CreateCheckIn open-session lookup
					{
						Fields: []fireconf.IndexField{
							{Path: "WorkerID", Order: fireconf.OrderAscending},
							{Path: "Status", Order: fireconf.OrderAscending},
						},
					},
					// ListByDateRange: Date range, newest check-in first
					{
						Fields: []fireconf.IndexField{
							{Path: "Date", Order: fireconf.OrderAscending},
							{Path: "CheckInAt", Order: fireconf.OrderDescending},
						},
					},
					// ListByDateRange with Late filter
					{
						Fields: []fireconf.IndexField{
							{Path: "Late", Order: fireconf.OrderAscending},
							{Path: "Date", Order: fireconf.OrderAscending},
							{Path: "CheckInAt", Order: fireconf.OrderDescending},
						},
					},
					// ListByWorker: per-worker history in a date range
					{
						Fields: []fireconf.IndexField{
							{Path: "WorkerID", Order: fireconf.OrderAscending},
							{Path: "Date", Order: fireconf.OrderAscending},
							{Path: "CheckInAt", Order: fireconf.OrderDescending},
						},
					},
					// CountLate: per-worker late records in a date range
					{
						Fields: []fireconf.IndexField{
							{Path: "WorkerID", Order: fireconf.OrderAscending},
							{Path: "Late", Order: fireconf.OrderAscending},
							{Path: "Date", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: "access_logs",
				Indexes: []fireconf.Index{
					// ListByWorker: per-worker trail, newest first
					{
						Fields: []fireconf.IndexField{
							{Path: "WorkerID", Order: fireconf.OrderAscending},
							{Path: "At", Order: fireconf.OrderDescending},
						},
					},
					// ListDeniedSince: denied entries after a cutoff
					{
						Fields: []fireconf.IndexField{
							{Path: "Status", Order: fireconf.OrderAscending},
							{Path: "At", Order: fireconf.OrderDescending},
						},
					},
				},
			},
			{
				Name: "security_events",
				Indexes: []fireconf.Index{
					// ListByTimeRange with severity filter
					{
						Fields: []fireconf.IndexField{
							{Path: "Severity", Order: fireconf.OrderAscending},
							{Path: "At", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
