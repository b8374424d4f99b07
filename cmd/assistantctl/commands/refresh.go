package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/josephshahen/nibras-api/internal/config"
	"github.com/josephshahen/nibras-api/internal/database"
	"github.com/josephshahen/nibras-api/internal/queue"
	"github.com/josephshahen/nibras-api/internal/refresher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRefreshCmd creates the refresh command
func NewRefreshCmd() *cobra.Command {
	var userID string
	var enqueue bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run a background refresh pass",
		Long:  "Run a refresh pass directly, or enqueue it as a job with --enqueue. Without --user every active user is processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx := context.Background()

			if enqueue {
				jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
				if err != nil {
					return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
				}
				defer func() {
					if err := jobQueue.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close RabbitMQ: %v\n", err)
					}
				}()

				jobType := queue.JobTypeRefreshAll
				if userID != "" {
					jobType = queue.JobTypeRefreshUser
				}
				job := queue.NewJob(jobType, userID)
				if err := jobQueue.Enqueue(ctx, job); err != nil {
					return fmt.Errorf("failed to enqueue refresh job: %w", err)
				}
				fmt.Printf("Enqueued %s job %s\n", job.Type, job.ID)
				return nil
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			catalog := refresher.DefaultCatalog()
			if cfg.CatalogFile != "" {
				catalog, err = refresher.LoadCatalog(cfg.CatalogFile)
				if err != nil {
					return fmt.Errorf("failed to load activity catalog: %w", err)
				}
			}

			refr := refresher.New(
				database.NewUserRepository(db),
				database.NewActivityRepository(db),
				catalog,
				zap.NewNop(),
			)

			var processed int
			if userID != "" {
				processed, err = refr.RefreshUser(ctx, userID)
			} else {
				processed, err = refr.Run(ctx)
			}
			if err != nil {
				return fmt.Errorf("refresh pass failed: %w", err)
			}

			fmt.Printf("Refresh pass complete: %d user(s) processed\n", processed)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Refresh a single user id")
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Enqueue as a job instead of running directly")
	return cmd
}
