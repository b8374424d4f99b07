package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/josephshahen/nibras-api/internal/assistant"
	"github.com/josephshahen/nibras-api/internal/config"
	"github.com/josephshahen/nibras-api/internal/database"
	"github.com/spf13/cobra"
)

// NewUserCmd creates the user command with inspect, expire and erase subcommands
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Inspect and manage assistant accounts",
	}
	cmd.AddCommand(newUserInspectCmd())
	cmd.AddCommand(newUserExpireCmd())
	cmd.AddCommand(newUserEraseCmd())
	return cmd
}

func openDB() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}

func newUserInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <user-id>",
		Short: "Show an assistant account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx := context.Background()
			repo := database.NewUserRepository(db)

			user, err := repo.GetByID(ctx, args[0])
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("user %s not found", args[0])
				}
				return fmt.Errorf("failed to load user: %w", err)
			}

			now := time.Now()
			fmt.Printf("User: %s\n", user.ID)
			fmt.Printf("  Status:          %s\n", user.Status)
			fmt.Printf("  Search category: %s\n", user.Preferences.SearchCategory)
			if user.Preferences.CustomSearch != "" {
				fmt.Printf("  Custom search:   %s\n", user.Preferences.CustomSearch)
			}
			fmt.Printf("  Created:         %s\n", user.CreatedAt.Format(time.RFC3339))
			fmt.Printf("  Last active:     %s (%s)\n", user.LastActive.Format(time.RFC3339), assistant.FormatRelativeTime(user.LastActive, now))

			activityRepo := database.NewActivityRepository(db)
			recRepo := database.NewRecommendationRepository(db)

			unreadActivities, err := activityRepo.CountUnread(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to count unread activities: %w", err)
			}
			unreadRecs, err := recRepo.CountUnread(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to count unread recommendations: %w", err)
			}
			fmt.Printf("  Unread:          %d activities, %d recommendations\n", unreadActivities, unreadRecs)
			return nil
		},
	}
}

func newUserExpireCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Expire active accounts idle longer than the window",
		Long:  "Mark active accounts as expired when last_active is older than the given number of days.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			repo := database.NewUserRepository(db)
			cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

			expired, err := repo.ExpireInactive(context.Background(), cutoff)
			if err != nil {
				return fmt.Errorf("failed to expire users: %w", err)
			}

			fmt.Printf("Expired %d account(s) idle since before %s\n", expired, cutoff.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Inactivity window in days")
	return cmd
}

func newUserEraseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "erase <user-id>",
		Short: "Delete an account and all of its feed entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			repo := database.NewUserRepository(db)
			if err := repo.Delete(context.Background(), args[0]); err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("user %s not found", args[0])
				}
				return fmt.Errorf("failed to erase user: %w", err)
			}

			fmt.Printf("Erased user %s\n", args[0])
			return nil
		},
	}
}
