package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lantern-lab/lantern/internal/adapters/display"
	"github.com/lantern-lab/lantern/internal/adapters/ordering"
	"github.com/lantern-lab/lantern/internal/adapters/primes"
	"github.com/lantern-lab/lantern/internal/config"
	"github.com/lantern-lab/lantern/internal/core/counterbalance"
	"github.com/lantern-lab/lantern/internal/core/nback"
)

// Check statuses.
const (
	statusOK   = "✓"
	statusWarn = "⚠"
	statusFail = "✗"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// ValidateCmd returns the validate command
func ValidateCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:     "validate",
		Aliases: []string{"doctor"},
		Short:   "Check the configuration, orderings and images",
		Long: `Check that everything a session needs is in place before a participant sits down.

Validates:
- Keys in the configuration
- Every practice and scored ordering file parses
- Both prime lists cover the longest block (unless looping)
- Every recognition folder has all clarity levels
- The output location is writable

Examples:
  lantern validate              # Run all checks
  lantern validate --quiet      # Exit code only (0=ready, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			results := runChecks(NewContext(), cfg)
			hasErrors := false
			for _, r := range results {
				if r.Status == statusFail {
					hasErrors = true
					break
				}
			}

			if !quiet {
				printChecks(cmd.OutOrStdout(), results, hasErrors)
			}

			if hasErrors {
				return fmt.Errorf("experiment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func runChecks(ctx context.Context, cfg *config.Config) []CheckResult {
	src := ordering.NewCSVSource(cfg.OrderingDir, cfg.NBackPracticeImageColumn, cfg.NBackTaskImageColumn)
	imgs := primes.NewFileSource(cfg.ImageDir, cfg.PrimeClarityLevels)

	results := []CheckResult{checkKeys(cfg)}
	orderResult, longest, practiceLongest := checkOrderings(ctx, cfg, src)
	results = append(results, orderResult)
	if cfg.NBackTask {
		results = append(results, checkNBackPrimes(ctx, cfg, imgs, longest, practiceLongest))
	}
	if cfg.PrimeTask {
		results = append(results, checkRecognitionFolders(ctx, cfg, imgs))
	}
	results = append(results, checkOutput(cfg))
	return results
}

func printChecks(out io.Writer, results []CheckResult, hasErrors bool) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Check              Status")
	fmt.Fprintln(out, "─────────────────────────")
	for _, r := range results {
		fmt.Fprintf(out, "%-18s %s\n", r.Name, colorStatus(r.Status))
	}
	fmt.Fprintln(out)

	hasDetails := false
	for _, r := range results {
		if r.Status != statusOK && r.Details != "" {
			if !hasDetails {
				fmt.Fprintln(out, "Details:")
				hasDetails = true
			}
			fmt.Fprintf(out, "\n%s:\n%s\n", r.Name, r.Details)
		}
	}

	if hasErrors {
		fmt.Fprintln(out, "\n⚠ Issues found. Fix them before running a session.")
	} else {
		fmt.Fprintln(out, "All checks passed.")
	}
}

func colorStatus(status string) string {
	switch status {
	case statusOK:
		return color.New(color.FgGreen).Sprint(status)
	case statusWarn:
		return color.New(color.FgYellow).Sprint(status)
	default:
		return color.New(color.FgRed).Sprint(status)
	}
}

// checkKeys validates that every configured key can be read from a terminal.
func checkKeys(cfg *config.Config) CheckResult {
	var problems []string
	for name, key := range map[string]string{
		"n_back_response_key": cfg.NBackResponseKey,
		"prime_answer_key":    cfg.PrimeAnswerKey,
		"abort_key":           cfg.AbortKey,
		"continue_key":        cfg.ContinueKey,
	} {
		if _, err := display.ParseKey(key); err != nil {
			problems = append(problems, fmt.Sprintf("  %s: %v", name, err))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return CheckResult{Name: "Keys", Status: statusFail, Details: strings.Join(problems, "\n")}
	}
	return CheckResult{Name: "Keys", Status: statusOK}
}

// checkOrderings parses every ordering the configuration needs and returns
// the longest scored and practice block.
func checkOrderings(ctx context.Context, cfg *config.Config, src *ordering.CSVSource) (CheckResult, int, int) {
	if !cfg.NBackTask {
		return CheckResult{Name: "Orderings", Status: statusOK}, 0, 0
	}

	var problems []string
	longest, practiceLongest := 0, 0

	if cfg.PracticeRun {
		for _, d := range []int{1, 2} {
			ids, err := src.Practice(ctx, d)
			if err != nil {
				problems = append(problems, "  "+err.Error())
				continue
			}
			practiceLongest = max(practiceLongest, len(ids))
		}
	}
	for d := 1; d <= nback.MaxDepth; d++ {
		for j := 0; j < cfg.NBackBlockTotal; j++ {
			ids, err := src.Block(ctx, d, j)
			if err != nil {
				problems = append(problems, "  "+err.Error())
				continue
			}
			longest = max(longest, len(ids))
		}
	}

	if len(problems) > 0 {
		return CheckResult{Name: "Orderings", Status: statusFail, Details: strings.Join(problems, "\n")}, longest, practiceLongest
	}
	return CheckResult{Name: "Orderings", Status: statusOK}, longest, practiceLongest
}

// checkNBackPrimes checks both prime lists, since the list depends on the participant.
func checkNBackPrimes(ctx context.Context, cfg *config.Config, src *primes.FileSource, longest, practiceLongest int) CheckResult {
	var problems []string

	check := func(label string, practice bool, list string, trials int) {
		if trials == 0 {
			return
		}
		paths, err := src.NBackPrimes(ctx, practice, list)
		if err != nil {
			problems = append(problems, "  "+err.Error())
			return
		}
		guard := nback.CanRunBlock(nback.RunBlockContext{
			Label:        label,
			Difficulty:   nback.MinDifficulty,
			MaxDepth:     nback.MaxDepth,
			TrialCount:   trials,
			PrimeCount:   len(paths),
			PrimeLooping: cfg.NBackPrimeLooping,
		})
		if err := guard.Error(); err != nil {
			problems = append(problems, "  "+err.Error())
		}
	}

	if cfg.PracticeRun {
		check("practice", true, "", practiceLongest)
	}
	lists := []string{counterbalance.PrimeListA, counterbalance.PrimeListB}
	if cfg.PrimeListName != "" {
		lists = []string{cfg.PrimeListName}
	}
	for _, list := range lists {
		check("list "+list, false, list, longest)
	}

	if len(problems) > 0 {
		return CheckResult{Name: "N-back primes", Status: statusFail, Details: strings.Join(problems, "\n")}
	}
	return CheckResult{Name: "N-back primes", Status: statusOK}
}

// checkRecognitionFolders checks that each prime folder has every clarity level.
func checkRecognitionFolders(ctx context.Context, cfg *config.Config, src *primes.FileSource) CheckResult {
	folders, err := src.RecognitionFolders(ctx, false)
	if err != nil {
		return CheckResult{Name: "Prime folders", Status: statusFail, Details: "  " + err.Error()}
	}
	if len(folders) == 0 {
		return CheckResult{
			Name:    "Prime folders",
			Status:  statusFail,
			Details: "  No folders under " + filepath.Join(cfg.ImageDir, "prime", "task"),
		}
	}

	var missing []string
	for _, f := range folders {
		missing = append(missing, src.MissingLevels(f)...)
	}
	if len(missing) > 0 {
		lines := make([]string, len(missing))
		for i, m := range missing {
			lines[i] = "  Missing: " + m
		}
		return CheckResult{Name: "Prime folders", Status: statusFail, Details: strings.Join(lines, "\n")}
	}
	if len(folders)%2 != 0 {
		return CheckResult{
			Name:    "Prime folders",
			Status:  statusWarn,
			Details: fmt.Sprintf("  %d folders; the halves around the break will differ by one", len(folders)),
		}
	}
	return CheckResult{Name: "Prime folders", Status: statusOK}
}

// checkOutput validates the output location can be written.
func checkOutput(cfg *config.Config) CheckResult {
	if err := os.MkdirAll(cfg.OutputLocation, 0755); err != nil {
		return CheckResult{Name: "Output", Status: statusFail, Details: "  " + err.Error()}
	}
	f, err := os.CreateTemp(cfg.OutputLocation, ".lantern-check-*")
	if err != nil {
		return CheckResult{Name: "Output", Status: statusFail, Details: "  " + err.Error()}
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return CheckResult{Name: "Output", Status: statusOK}
}
