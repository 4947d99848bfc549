package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"jobwatch/internal/filters"
	"jobwatch/internal/models"
)

func printJobs(w io.Writer, list []models.Job) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No jobs found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tPOSTED\tLINK")
	for _, job := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			job.ID,
			job.Title,
			orDash(job.Company),
			orDash(job.Location),
			orDash(job.PostedDate),
			job.JobLink,
		)
	}
	tw.Flush()
}

func printAlerts(w io.Writer, logs []models.AlertLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No alerts sent.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tCHANNEL\tSTATUS\tSENT\tMESSAGE")
	for _, l := range logs {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n", l.ID, l.JobID, l.Channel, l.Status, l.CreatedAt, orDash(l.Message))
	}
	tw.Flush()
}

func printCriteria(w io.Writer, s filters.State) {
	fmt.Fprintf(w, "keyword:  %s\n", orDash(s.Keyword))
	fmt.Fprintf(w, "company:  %s\n", orDash(s.Company))
	fmt.Fprintf(w, "location: %s\n", orDash(s.Location))
	fmt.Fprintf(w, "order:    %s\n", models.GetOrderByDisplayName(s.OrderBy))
	fmt.Fprintf(w, "pages:    %d\n", s.MaxPages)
}

func orDash(s *string) string {
	if v := models.StringValue(s); v != "" {
		return v
	}
	return "-"
}
