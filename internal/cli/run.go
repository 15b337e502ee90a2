package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lantern-lab/lantern/internal/adapters/display"
	"github.com/lantern-lab/lantern/internal/app"
	"github.com/lantern-lab/lantern/internal/ports/primary"
	"github.com/lantern-lab/lantern/internal/wire"
)

// sessionFlags are the participant details every task command takes.
type sessionFlags struct {
	participant string
	ageGroup    string
	age         int
	script      string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.participant, "participant", "p", "", "Participant ID (its digits select the condition)")
	cmd.Flags().StringVarP(&f.ageGroup, "age-group", "g", "", "Age group, used in output paths")
	cmd.Flags().IntVar(&f.age, "age", 0, "Participant age in years (0 if unknown)")
	cmd.Flags().StringVar(&f.script, "headless", "", "Run without a terminal, answering from a YAML script")
	cmd.MarkFlagRequired("participant")
}

func (f *sessionFlags) request() primary.SessionRequest {
	return primary.SessionRequest{Participant: f.participant, AgeGroup: f.ageGroup, Age: f.age}
}

// openExperiment wires the services for a task command.
func (f *sessionFlags) openExperiment() (*wire.Experiment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	opts := wire.Options{
		Config:   cfg,
		LogLevel: globalLogLevel,
		LogFile:  globalLogFile,
	}
	if f.script != "" {
		script, err := display.LoadScript(f.script)
		if err != nil {
			return nil, err
		}
		opts.Script = script
	}
	return wire.NewExperiment(opts)
}

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full experiment",
		Long: `Run the adaptive n-back task followed by the prime recognition task,
as enabled in the configuration.

Press the abort key (escape by default) at any time to stop; data collected
so far is saved.

Examples:
  lantern run -p P07 -g adult --age 24
  lantern run -p P07 --headless script.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := flags.openExperiment()
			if err != nil {
				return err
			}

			summary, runErr := exp.Service.Run(NewContext(), flags.request())
			if err := exp.Close(); err != nil && runErr == nil {
				runErr = err
			}
			if runErr != nil {
				return describeRunError(runErr)
			}

			printSessionSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

// NBackCmd returns the nback command
func NBackCmd() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "nback",
		Short: "Run only the adaptive n-back task",
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := flags.openExperiment()
			if err != nil {
				return err
			}

			summary, runErr := exp.Service.RunNBack(NewContext(), flags.request())
			if err := exp.Close(); err != nil && runErr == nil {
				runErr = err
			}
			if runErr != nil {
				return describeRunError(runErr)
			}

			printNBackSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

// PrimeCmd returns the prime command
func PrimeCmd() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "prime",
		Short: "Run only the prime recognition task",
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := flags.openExperiment()
			if err != nil {
				return err
			}

			summary, runErr := exp.Service.RunPrimeTask(NewContext(), flags.request())
			if err := exp.Close(); err != nil && runErr == nil {
				runErr = err
			}
			if runErr != nil {
				return describeRunError(runErr)
			}

			printPrimeSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func describeRunError(err error) error {
	if errors.Is(err, app.ErrConfiguration) {
		return fmt.Errorf("%w\nRun 'lantern validate' to check the ordering and image files", err)
	}
	return err
}

func printSessionSummary(out io.Writer, s *primary.SessionSummary) {
	fmt.Fprintf(out, "Session %s  participant %s  reversed=%v  prime list %s\n",
		s.SessionID, s.Participant, s.BlocksReversed, s.PrimeListName)
	if s.NBack != nil {
		printNBackSummary(out, s.NBack)
	}
	if s.Prime != nil {
		printPrimeSummary(out, s.Prime)
	}
}

func printNBackSummary(out io.Writer, s *primary.NBackSummary) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "n-back: start %d-back, ceiling %d-back, final %d-back\n", s.StartDifficulty, s.MaxDifficulty, s.FinalDifficulty)
	fmt.Fprintln(out, "Block  Set  N  Trials  Errors  Lures  Next")
	fmt.Fprintln(out, "──────────────────────────────────────────")
	for _, b := range s.Blocks {
		next := fmt.Sprintf("%d", b.NextDifficulty)
		if !b.Complete {
			next = color.New(color.FgYellow).Sprint("stopped")
		}
		fmt.Fprintf(out, "%-6d %-4d %-2d %-7d %-7d %-6d %s\n",
			b.Index+1, b.OrderSet, b.Difficulty, b.Trials, b.Errors, b.Lures, next)
	}
	fmt.Fprintf(out, "%d of %d blocks completed, %d trials saved\n", s.BlocksCompleted, len(s.Blocks), s.RecordsSaved)
	printAborted(out, s.Aborted)
}

func printPrimeSummary(out io.Writer, s *primary.PrimeSummary) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "prime: %d images, %d recognised, %d answers saved\n", s.Images, s.Answered, s.RecordsSaved)
	printAborted(out, s.Aborted)
}

func printAborted(out io.Writer, aborted bool) {
	if aborted {
		fmt.Fprintln(out, color.New(color.FgYellow).Sprint("⚠ Session aborted; collected data was saved."))
	}
}

