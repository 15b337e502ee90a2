// Package wire builds the application services from configuration.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/lantern-lab/lantern/internal/adapters/display"
	"github.com/lantern-lab/lantern/internal/adapters/ordering"
	"github.com/lantern-lab/lantern/internal/adapters/primes"
	"github.com/lantern-lab/lantern/internal/adapters/sink"
	"github.com/lantern-lab/lantern/internal/app"
	"github.com/lantern-lab/lantern/internal/config"
	"github.com/lantern-lab/lantern/internal/db"
	"github.com/lantern-lab/lantern/internal/logger"
	"github.com/lantern-lab/lantern/internal/ports/primary"
	"github.com/lantern-lab/lantern/internal/ports/secondary"
	"github.com/lantern-lab/lantern/internal/templates"
)

// Options selects the adapters behind an Experiment.
type Options struct {
	Config *config.Config

	// Script switches to the headless display when set.
	Script *display.Script
	// In and Out are the participant terminal; default os.Stdin and os.Stdout.
	In  *os.File
	Out io.Writer

	LogLevel string
	// LogFile defaults to lantern.log under the output location.
	LogFile string
}

// Experiment holds a wired ExperimentService and everything it must release.
type Experiment struct {
	Service primary.ExperimentService
	Log     *logger.Logger

	closers []func() error
}

// NewExperiment builds the display, ordering, prime and sink adapters named by opts.
func NewExperiment(opts Options) (*Experiment, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Experiment{}

	log, err := newLogger(cfg, opts)
	if err != nil {
		return nil, err
	}
	e.Log = log
	e.closers = append(e.closers, func() error { log.Sync(); return nil })

	rs, err := newRecordSink(cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, rs.close)

	disp, err := newDisplay(cfg, opts)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, disp.Close)

	e.Service = app.NewExperimentService(
		cfg,
		disp,
		ordering.NewCSVSource(cfg.OrderingDir, cfg.NBackPracticeImageColumn, cfg.NBackTaskImageColumn),
		primes.NewFileSource(cfg.ImageDir, cfg.PrimeClarityLevels),
		rs.sink,
		rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log,
	)
	return e, nil
}

// Close releases the adapters in reverse order of creation.
func (e *Experiment) Close() error {
	var err error
	for i := len(e.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, e.closers[i]())
	}
	e.closers = nil
	return err
}

// SessionHistoryService opens the session database for browsing. The
// returned function closes it.
func SessionHistoryService(cfg *config.Config) (primary.SessionHistoryService, func() error, error) {
	conn, err := db.Open(cfg.ResolvedDatabasePath())
	if err != nil {
		return nil, nil, err
	}
	return app.NewSessionHistoryService(sink.NewSQLiteSink(conn)), conn.Close, nil
}

func newLogger(cfg *config.Config, opts Options) (*logger.Logger, error) {
	level := opts.LogLevel
	if level == "" {
		level = "info"
	}
	path := opts.LogFile
	if path == "" {
		path = filepath.Join(cfg.OutputLocation, "lantern.log")
	}
	log, err := logger.New(level, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

type wiredSink struct {
	sink  secondary.RecordSink
	close func() error
}

func newRecordSink(cfg *config.Config) (*wiredSink, error) {
	var (
		sinks []secondary.RecordSink
		conn  *sql.DB
	)

	if cfg.Store == "csv" || cfg.Store == "both" {
		sinks = append(sinks, sink.NewCSVSink(cfg.OutputLocation))
	}
	if cfg.Store == "sqlite" || cfg.Store == "both" {
		var err error
		conn, err = db.Open(cfg.ResolvedDatabasePath())
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		sinks = append(sinks, sink.NewSQLiteSink(conn))
	}

	multi := sink.NewMulti(sinks...)
	return &wiredSink{
		sink: multi,
		close: func() error {
			err := multi.Close()
			if conn != nil {
				err = multierr.Append(err, conn.Close())
			}
			return err
		},
	}, nil
}

func newDisplay(cfg *config.Config, opts Options) (secondary.Display, error) {
	if opts.Script != nil {
		return display.NewScripted(opts.Script), nil
	}

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	var out io.Writer = os.Stdout
	if opts.Out != nil {
		out = opts.Out
	}
	return display.NewTerminal(in, out, display.TerminalOptions{
		InstructionDir: cfg.ImageDir,
		AbortKey:       cfg.AbortKey,
		ContinueKey:    cfg.ContinueKey,
		Fallback: func(task, genre, subgenre string) (string, bool) {
			page, err := templates.Instruction(task, genre, subgenre, InstructionData(cfg))
			return page, err == nil
		},
	})
}

// InstructionData fills the built-in instruction pages from cfg.
func InstructionData(cfg *config.Config) templates.InstructionData {
	return templates.InstructionData{
		ResponseKey:    cfg.NBackResponseKey,
		PrimeAnswerKey: cfg.PrimeAnswerKey,
		BlockTotal:     cfg.NBackBlockTotal,
	}
}
