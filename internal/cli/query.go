package cli

import (
	"fmt"

	"jobwatch/internal/api/jobs"
	"jobwatch/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func JobsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List stored jobs with filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword, _ := cmd.Flags().GetString("keyword")
			company, _ := cmd.Flags().GetString("company")
			location, _ := cmd.Flags().GetString("location")
			order, _ := cmd.Flags().GetString("order")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			orderBy, ok := models.ParseOrderBy(order)
			if !ok {
				return fmt.Errorf("unknown order %q, use newest or oldest", order)
			}

			list, err := app.Client.ListJobs(cmd.Context(), jobs.ListParams{
				Keyword:  keyword,
				Company:  company,
				Location: location,
				OrderBy:  orderBy,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}

			printJobs(cmd.OutOrStdout(), list)
			return nil
		},
	}

	cmd.Flags().String("keyword", "", "Filter by keyword")
	cmd.Flags().String("company", "", "Filter by company")
	cmd.Flags().String("location", "", "Filter by location")
	cmd.Flags().String("order", "newest", "Sort order (newest, oldest)")
	cmd.Flags().Int("limit", 50, "Maximum number of jobs")
	cmd.Flags().Int("offset", 0, "Number of jobs to skip")
	return cmd
}

func SearchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search jobs by keyword and location",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword, _ := cmd.Flags().GetString("keyword")
			location, _ := cmd.Flags().GetString("location")
			pages, _ := cmd.Flags().GetInt("pages")

			list, err := app.Client.SearchJobs(cmd.Context(), jobs.SearchParams{
				Keyword:  keyword,
				Location: location,
				MaxPages: pages,
			})
			if err != nil {
				return fmt.Errorf("failed to search jobs: %w", err)
			}

			printJobs(cmd.OutOrStdout(), list)
			return nil
		},
	}

	cmd.Flags().String("keyword", "", "Search keyword")
	cmd.Flags().String("location", "", "Search location")
	cmd.Flags().Int("pages", app.Config.DefaultMaxPages, "Max pages (1-50)")
	return cmd
}

func SuggestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <keyword|company|location> <text>",
		Short: "Show autocomplete suggestions for a filter field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := models.ParseField(args[0])
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			ctx := cmd.Context()
			cache := app.openCache()
			if cache != nil {
				defer cache.Close()
				if items, err := cache.GetSuggestions(ctx, field, args[1], limit); err == nil {
					printSuggestions(cmd, items)
					return nil
				}
			}

			items, err := app.Client.Suggest(ctx, field, args[1], limit)
			if err != nil {
				return fmt.Errorf("failed to get suggestions: %w", err)
			}

			if cache != nil && items != nil {
				if err := cache.SetSuggestions(ctx, field, args[1], limit, items); err != nil {
					app.Logger.Warn("failed to cache suggestions", zap.Error(err))
				}
			}

			printSuggestions(cmd, items)
			return nil
		},
	}

	cmd.Flags().Int("limit", app.Config.SuggestLimit, "Maximum number of suggestions")
	return cmd
}

func printSuggestions(cmd *cobra.Command, items []string) {
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No suggestions.")
		return
	}
	for _, item := range items {
		fmt.Fprintln(out, item)
	}
}

func AlertsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List alerts the backend has sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			logs, err := app.Client.ListAlerts(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list alerts: %w", err)
			}

			printAlerts(cmd.OutOrStdout(), logs)
			return nil
		},
	}

	cmd.Flags().Int("limit", 100, "Maximum number of alerts")
	cmd.Flags().Int("offset", 0, "Number of alerts to skip")
	return cmd
}
