package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cwarden/daybook/internal/calendar"
	"github.com/cwarden/daybook/internal/events"
	"github.com/cwarden/daybook/internal/parser"
	"github.com/spf13/cobra"
)

var (
	addDate   string
	addAuthor string
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <content...>",
	Short: "Add an event to a day",
	Long: `Add an event to a day. The author defaults to default_author from the
config file (or $DAYBOOK_AUTHOR) and the date defaults to today.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addDate, "date", "d", "today", "Day to add the event to")
	addCmd.Flags().StringVarP(&addAuthor, "author", "a", "", "Author of the event")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	day, err := parseDay(parser.NewDateParser(), addDate)
	if err != nil {
		return err
	}
	date := day.Format(calendar.ISOLayout)

	author := addAuthor
	if author == "" {
		author = cfg.DefaultAuthor
	}
	content := strings.Join(args, " ")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if err := newClient(cfg).Create(ctx, date, author, content); err != nil {
		if errors.Is(err, events.ErrValidation) {
			return fmt.Errorf("author and content are both required (use --author or set default_author)")
		}
		return fmt.Errorf("failed to save event: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Event saved for %s\n", date)
	return nil
}
