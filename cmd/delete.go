package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cwarden/daybook/internal/events"
	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event by ID",
	Long:  `Delete an event by the ID shown in "daybook list".`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	client := newClient(cfg)

	description := id
	if store, err := lookup(client); err != nil {
		log.Printf("delete: could not look up %s: %v", id, err)
	} else if date, ev, ok := store.Find(id); ok {
		description = fmt.Sprintf("%s on %s (%s: %s)", id, date, ev.Author, ev.Content)
	} else {
		log.Printf("delete: %s is not in the current event list", id)
	}

	if cfg.ConfirmDelete && !deleteYes {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete event %s? [y/N] ", description)
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	// The prompt may take longer than a request, so the deadline starts here.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if err := client.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return nil
}

func lookup(client *events.Client) (events.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	return client.List(ctx)
}
