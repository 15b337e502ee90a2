package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lantern-lab/lantern/internal/ports/primary"
	"github.com/lantern-lab/lantern/internal/wire"
)

// SessionsCmd returns the sessions command
func SessionsCmd() *cobra.Command {
	var (
		participant string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions recorded in the session database",
		Long:  "List sessions stored by the sqlite store, most recent first (default 20)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = 20
			}

			svc, closeDB, err := wire.SessionHistoryService(cfg)
			if err != nil {
				return fmt.Errorf("failed to open session database: %w", err)
			}
			defer closeDB()

			entries, err := svc.ListSessions(NewContext(), primary.SessionFilters{
				Participant: participant,
				Limit:       limit,
			})
			if err != nil {
				return fmt.Errorf("failed to fetch sessions: %w", err)
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
				return nil
			}

			printSessionEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&participant, "participant", "p", "", "Only show this participant")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sessions")

	return cmd
}

func printSessionEntries(out io.Writer, entries []*primary.SessionEntry) {
	for _, e := range entries {
		reversed := ""
		if e.BlocksReversed {
			reversed = " reversed"
		}
		fmt.Fprintf(out, "%s  %-8s %-8s list %s%s  %d trials  %d prime answers  (%s)\n",
			e.CreatedAt, e.Participant, e.AgeGroup, e.PrimeListName, reversed, e.Trials, e.PrimeAnswers, e.ID)
	}
}
