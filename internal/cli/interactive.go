package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jobwatch/internal/engine"
	"jobwatch/internal/models"
	"jobwatch/internal/scrape"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shellHelp = `commands:
  keyword|company|location <text>  type into a filter field
  pick <field> <n>                 use the n-th suggestion
  clear <field>                    clear a filter field
  order newest|oldest              change sort order
  pages <n>                        max pages for search and scrape
  scrape                           run a scrape and refresh the list
  scrape-advanced                  run an advanced scrape with exports
  show                             print filters, status and jobs
  quit`

var errQuit = errors.New("quit")

func InteractiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Interactive search session with suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := engine.Options{
				SuggestWindow: app.Config.SuggestDebounce,
				SuggestLimit:  app.Config.SuggestLimit,
				Timeout:       app.Config.APITimeout,
				FilesBaseURL:  app.Config.FilesBaseURL,
			}

			cache := app.openCache()
			if cache != nil {
				defer cache.Close()
				opts.Cache = suggestCache(cache)
			}

			session := engine.New(app.Client, opts, app.Logger)
			defer session.Close()
			session.Start()

			app.Logger.Debug("interactive session started", zap.String("session_id", session.ID()))

			return runShell(cmd.Context(), session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runShell(ctx context.Context, session *engine.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, shellHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		err := execLine(ctx, session, scanner.Text(), out)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}

	return scanner.Err()
}

func execLine(ctx context.Context, session *engine.Session, line string, out io.Writer) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "keyword", "company", "location":
		return session.OnInput(models.Field(name), rest)

	case "pick":
		fieldArg, nArg, _ := strings.Cut(rest, " ")
		field, err := models.ParseField(fieldArg)
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(nArg))
		if err != nil {
			return fmt.Errorf("pick needs a number: %w", err)
		}
		items := session.View().Suggestions[field]
		if n < 1 || n > len(items) {
			return fmt.Errorf("no suggestion %d for %s", n, field)
		}
		return session.Choose(field, items[n-1])

	case "clear":
		field, err := models.ParseField(rest)
		if err != nil {
			return err
		}
		return session.Clear(field)

	case "order":
		order, ok := models.ParseOrderBy(rest)
		if !ok {
			return fmt.Errorf("unknown order %q, use newest or oldest", rest)
		}
		session.SetOrder(order)
		return nil

	case "pages":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("pages needs a number: %w", err)
		}
		st := session.SetMaxPages(n)
		fmt.Fprintf(out, "pages: %d\n", st.MaxPages)
		return nil

	case "scrape", "scrape-advanced":
		var (
			res scrape.Result
			err error
		)
		if name == "scrape" {
			res, err = session.RunScrape(ctx)
		} else {
			res, err = session.RunAdvancedScrape(ctx, scrape.DefaultOptions())
		}
		if err != nil {
			return err
		}
		printScrapeResult(out, res)
		return nil

	case "show":
		printView(out, session.View())
		return nil

	case "help":
		fmt.Fprintln(out, shellHelp)
		return nil

	case "quit", "exit":
		return errQuit
	}

	return fmt.Errorf("unknown command %q, try help", name)
}

func printView(out io.Writer, v engine.View) {
	printCriteria(out, v.Criteria)

	fmt.Fprintf(out, "scrape:   %s", v.Scrape.State)
	if v.Scrape.Err != nil {
		fmt.Fprintf(out, " (%v)", v.Scrape.Err)
	}
	fmt.Fprintln(out)
	if v.Scrape.Link != "" {
		fmt.Fprintf(out, "export:   %s\n", v.Scrape.Link)
	}

	for _, f := range models.Fields() {
		if items := v.Suggestions[f]; len(items) > 0 {
			fmt.Fprintf(out, "%s suggestions: %s\n", f, strings.Join(items, " | "))
		}
	}

	switch {
	case v.Results.Loading:
		fmt.Fprintln(out, "Loading...")
	case v.Results.Err != nil:
		fmt.Fprintf(out, "Failed to load jobs: %v\n", v.Results.Err)
	default:
		printJobs(out, v.Results.Jobs)
	}
}
