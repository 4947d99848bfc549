package cli

import (
	"fmt"
	"io"

	"jobwatch/internal/filters"
	"jobwatch/internal/results"
	"jobwatch/internal/scrape"

	"github.com/spf13/cobra"
)

func ScrapeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Trigger a backend scrape and show the refreshed job list",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword, _ := cmd.Flags().GetString("keyword")
			company, _ := cmd.Flags().GetString("company")
			location, _ := cmd.Flags().GetString("location")
			pages, _ := cmd.Flags().GetInt("pages")
			advanced, _ := cmd.Flags().GetBool("advanced")

			criteria := filters.New().Apply(filters.Patch{
				Keyword:  filters.Set(keyword),
				Company:  filters.Set(company),
				Location: filters.Set(location),
				MaxPages: &pages,
			})

			out := cmd.OutOrStdout()
			resultCtl := results.NewController(app.Client, app.Config.APITimeout, nil, app.Logger)
			workflow := scrape.NewWorkflow(app.Client, resultCtl, app.Config.FilesBaseURL, func(st scrape.Status) {
				fmt.Fprintf(out, "[%s]\n", st.State)
			}, app.Logger)

			var (
				res scrape.Result
				err error
			)
			if advanced {
				opts := scrape.DefaultOptions()
				opts.Enrich, _ = cmd.Flags().GetBool("enrich")
				opts.Headless, _ = cmd.Flags().GetBool("headless")
				opts.DelayMin, _ = cmd.Flags().GetFloat64("delay-min")
				opts.DelayMax, _ = cmd.Flags().GetFloat64("delay-max")
				res, err = workflow.RunAdvanced(cmd.Context(), criteria, opts)
			} else {
				res, err = workflow.RunBasic(cmd.Context(), criteria)
			}
			if err != nil {
				return fmt.Errorf("scrape failed: %w", err)
			}

			printScrapeResult(out, res)
			printJobs(out, resultCtl.Snapshot().Jobs)
			return nil
		},
	}

	defaults := scrape.DefaultOptions()
	cmd.Flags().String("keyword", "", "Scrape keyword (default \""+scrape.DefaultKeywords+"\")")
	cmd.Flags().String("company", "", "Company filter for the refreshed list")
	cmd.Flags().String("location", "", "Scrape location (default \""+scrape.DefaultLocation+"\")")
	cmd.Flags().Int("pages", app.Config.DefaultMaxPages, "Max pages (1-50)")
	cmd.Flags().Bool("advanced", false, "Run the advanced scrape and export files")
	cmd.Flags().Bool("enrich", defaults.Enrich, "Enrich listings (advanced only)")
	cmd.Flags().Bool("headless", defaults.Headless, "Run the browser headless (advanced only)")
	cmd.Flags().Float64("delay-min", defaults.DelayMin, "Minimum delay between pages in seconds (advanced only)")
	cmd.Flags().Float64("delay-max", defaults.DelayMax, "Maximum delay between pages in seconds (advanced only)")
	return cmd
}

func printScrapeResult(out io.Writer, res scrape.Result) {
	switch {
	case res.Rejected:
		fmt.Fprintln(out, "A scrape is already running.")
	case res.Manifest != nil:
		fmt.Fprintf(out, "Found %d jobs, exported %d.\n", res.Manifest.Found, res.Manifest.Exported)
		if res.Link != "" {
			fmt.Fprintf(out, "Export (%s): %s\n", res.Label, res.Link)
		}
	case res.Ack != nil:
		fmt.Fprintf(out, "Found %d jobs, %d new.\n", res.Ack.Found, res.Ack.Created)
	}
}
