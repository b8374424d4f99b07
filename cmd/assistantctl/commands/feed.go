package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/josephshahen/nibras-api/internal/assistant"
	"github.com/josephshahen/nibras-api/internal/database"
	"github.com/josephshahen/nibras-api/internal/models"
	"github.com/spf13/cobra"
)

// NewFeedCmd creates the feed command
func NewFeedCmd() *cobra.Command {
	var limit int
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:   "feed <user-id>",
		Short: "Show a user's activity and recommendation feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx := context.Background()
			userID := args[0]
			now := time.Now()

			activityRepo := database.NewActivityRepository(db)
			recRepo := database.NewRecommendationRepository(db)

			activities, err := activityRepo.ListByUserID(ctx, userID, limit)
			if err != nil {
				return fmt.Errorf("failed to list activities: %w", err)
			}

			fmt.Printf("Activities (%d):\n", len(activities))
			for _, a := range activities {
				marker := " "
				if !a.IsRead {
					marker = "*"
				}
				fmt.Printf("  %s [%s] %s (%s)\n", marker, a.Type, a.Title, assistant.FormatRelativeTime(a.CreatedAt, now))
				if a.Description != "" {
					fmt.Printf("      %s\n", a.Description)
				}
			}

			var recommendations []*models.Recommendation
			if unreadOnly {
				recommendations, err = recRepo.ListUnread(ctx, userID, limit)
			} else {
				recommendations, err = recRepo.ListByUserID(ctx, userID, limit)
			}
			if err != nil {
				return fmt.Errorf("failed to list recommendations: %w", err)
			}

			fmt.Printf("Recommendations (%d):\n", len(recommendations))
			for _, rec := range recommendations {
				marker := " "
				if !rec.IsRead {
					marker = "*"
				}
				fmt.Printf("  %s [%s] %s (%s)\n", marker, rec.Category, rec.Title, assistant.FormatRelativeTime(rec.CreatedAt, now))
				if rec.URL != "" {
					fmt.Printf("      %s\n", rec.URL)
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries per feed")
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only show unread recommendations")
	return cmd
}
