package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lantern-lab/lantern/internal/core/counterbalance"
)

// ConditionCmd returns the condition command
func ConditionCmd() *cobra.Command {
	var total int

	cmd := &cobra.Command{
		Use:   "condition <participant-id>...",
		Short: "Show the counterbalancing condition of participants",
		Long: `Show which block order and prime list each participant ID selects.

The digits of the ID form the participant number n:
  blocks reversed  n is odd
  prime list       A when (n / 2) is even, otherwise B

Examples:
  lantern condition P01 P02 P03 P04`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Participant  Number  Reversed  List  Order sets")
			fmt.Fprintln(out, "───────────────────────────────────────────────")
			for _, id := range args {
				cond, err := counterbalance.FromParticipant(id)
				if err != nil {
					fmt.Fprintf(out, "%-12s %s\n", id, color.New(color.FgRed).Sprint(err.Error()))
					continue
				}
				sets := make([]int, total)
				for i := range sets {
					sets[i] = counterbalance.OrderSet(i, total, cond.BlocksReversed)
				}
				fmt.Fprintf(out, "%-12s %-7s %-9v %-5s %v\n",
					id, cond.ParticipantNumber, cond.BlocksReversed, cond.PrimeListName, sets)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&total, "blocks", 4, "Number of scored blocks to show order sets for")

	return cmd
}
