package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/cwarden/daybook/internal/calendar"
	"github.com/cwarden/daybook/internal/parser"
	"github.com/spf13/cobra"
)

var (
	listDate  string
	listMonth string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List events and exit",
	Long: `List events for a month (the current one by default) or a single day
in a simple text format and exit. Dates accept the same forms as the
goto prompt, e.g. 2025-05-01, "May 2025", "next month" or "tomorrow".`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "Show a single day")
	listCmd.Flags().StringVar(&listMonth, "month", "", "Show a whole month")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if listDate != "" && listMonth != "" {
		return fmt.Errorf("--date and --month are mutually exclusive")
	}

	p := parser.NewDateParser()
	var (
		prefix string
		title  string
	)
	switch {
	case listDate != "":
		day, err := parseDay(p, listDate)
		if err != nil {
			return err
		}
		prefix = day.Format(calendar.ISOLayout)
		title = fmt.Sprintf("Events for %s", day.Format(cfg.DateFormat))

	default:
		vs := calendar.FromTime(time.Now())
		if listMonth != "" {
			target, err := p.Parse(listMonth)
			if err != nil {
				return fmt.Errorf("invalid --month: %w", err)
			}
			vs = calendar.FromTime(target.Date)
		}
		prefix = fmt.Sprintf("%04d-%02d", vs.Year, vs.Month+1)
		title = fmt.Sprintf("Events for %s", vs)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	store, err := newClient(cfg).List(ctx)
	if err != nil {
		return fmt.Errorf("error getting events: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s:\n", title)

	selected := store.InMonth(prefix)
	if selected.Len() == 0 {
		fmt.Fprintln(out, "No events found.")
		return nil
	}

	for _, date := range selected.Dates() {
		fmt.Fprintf(out, "%s\n", date)
		for _, ev := range selected.For(date) {
			fmt.Fprintf(out, "  [%s] %s: %s\n", ev.ID, ev.Author, ev.Content)
		}
	}

	return nil
}

// parseDay resolves input to a single day.
func parseDay(p *parser.DateParser, input string) (time.Time, error) {
	target, err := p.Parse(input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %w", err)
	}
	if !target.HasDay {
		return time.Time{}, fmt.Errorf("invalid date %q: a day is required", input)
	}
	return target.Date, nil
}
