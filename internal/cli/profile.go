package cli

import (
	"fmt"

	"jobwatch/internal/filters"
	"jobwatch/internal/models"

	"github.com/spf13/cobra"
)

func ProfileCmd(app *App) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved filter profiles",
	}

	saveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a filter profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword, _ := cmd.Flags().GetString("keyword")
			company, _ := cmd.Flags().GetString("company")
			location, _ := cmd.Flags().GetString("location")
			order, _ := cmd.Flags().GetString("order")
			pages, _ := cmd.Flags().GetInt("pages")

			orderBy, ok := models.ParseOrderBy(order)
			if !ok {
				return fmt.Errorf("unknown order %q, use newest or oldest", order)
			}

			criteria := filters.New().Apply(filters.Patch{
				Keyword:  filters.Set(keyword),
				Company:  filters.Set(company),
				Location: filters.Set(location),
				OrderBy:  &orderBy,
				MaxPages: &pages,
			})

			store, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveProfile(cmd.Context(), criteria.ToProfile(args[0])); err != nil {
				return fmt.Errorf("failed to save profile: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved.\n", args[0])
			printCriteria(cmd.OutOrStdout(), criteria)
			return nil
		},
	}
	saveCmd.Flags().String("keyword", "", "Keyword")
	saveCmd.Flags().String("company", "", "Company")
	saveCmd.Flags().String("location", "", "Location")
	saveCmd.Flags().String("order", "newest", "Sort order (newest, oldest)")
	saveCmd.Flags().Int("pages", app.Config.DefaultMaxPages, "Max pages (1-50)")

	showCmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show one profile, or list all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()

			if len(args) == 0 {
				profiles, err := store.ListProfiles(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list profiles: %w", err)
				}
				if len(profiles) == 0 {
					fmt.Fprintln(out, "No profiles saved.")
				}
				for _, p := range profiles {
					fmt.Fprintln(out, p.Name)
				}
				return nil
			}

			profile, err := store.GetProfile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get profile: %w", err)
			}
			if profile == nil {
				return fmt.Errorf("profile %q not found", args[0])
			}

			printCriteria(out, filters.FromProfile(profile))
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a filter profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteProfile(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete profile: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Profile %q deleted.\n", args[0])
			return nil
		},
	}

	profileCmd.AddCommand(saveCmd, showCmd, deleteCmd)
	return profileCmd
}
