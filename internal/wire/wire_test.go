package wire

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lantern-lab/lantern/internal/adapters/display"
	"github.com/lantern-lab/lantern/internal/config"
	"github.com/lantern-lab/lantern/internal/ports/primary"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.OrderingDir = filepath.Join(root, "ordering")
	cfg.ImageDir = filepath.Join(root, "images")
	cfg.OutputLocation = filepath.Join(root, "data")
	cfg.Store = "both"
	cfg.PracticeRun = false
	cfg.NBackBlockTotal = 2
	cfg.PrimeClarityLevels = 2

	for d := 1; d <= 3; d++ {
		for j := 1; j <= cfg.NBackBlockTotal; j++ {
			writeFile(t, filepath.Join(cfg.OrderingDir, fmt.Sprintf("%d_%d.csv", d, j)),
				"trial,kind,image\n1,f,20\n2,f,21\n3,f,22\n4,f,23\n")
		}
	}
	for _, list := range []string{"A", "B"} {
		for i := 0; i < 4; i++ {
			name := fmt.Sprintf("%s_img%d", list, i)
			for l := 1; l <= cfg.PrimeClarityLevels; l++ {
				writeFile(t, filepath.Join(cfg.ImageDir, "prime", "task", list, name, fmt.Sprintf("%s_%d.png", name, l)), "")
			}
		}
	}
	return cfg
}

func TestNewExperiment_HeadlessSessionPersists(t *testing.T) {
	cfg := fixtureConfig(t)

	exp, err := NewExperiment(Options{
		Config:   cfg,
		Script:   &display.Script{Texts: []string{"first"}},
		LogLevel: "debug",
	})
	if err != nil {
		t.Fatalf("NewExperiment failed: %v", err)
	}

	summary, err := exp.Service.Run(context.Background(), primary.SessionRequest{Participant: "P06", AgeGroup: "adult", Age: 30})
	if closeErr := exp.Close(); closeErr != nil {
		t.Errorf("Close failed: %v", closeErr)
	}
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.NBack == nil || len(summary.NBack.Blocks) != 2 || summary.NBack.RecordsSaved != 8 {
		t.Fatalf("n-back summary = %+v", summary.NBack)
	}
	if summary.Prime == nil || summary.Prime.RecordsSaved != 8 {
		t.Fatalf("prime summary = %+v", summary.Prime)
	}

	nbackCSV := filepath.Join(cfg.OutputLocation, "n-back", "adult", "P06", "n-back.csv")
	f, err := os.Open(nbackCSV)
	if err != nil {
		t.Fatalf("n-back csv missing: %v", err)
	}
	rows, err := csv.NewReader(f).ReadAll()
	f.Close()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(rows) != 9 {
		t.Errorf("csv rows = %d, want header + 8", len(rows))
	}

	if _, err := os.Stat(filepath.Join(cfg.OutputLocation, "lantern.log")); err != nil {
		t.Errorf("log file missing: %v", err)
	}

	history, closeDB, err := SessionHistoryService(cfg)
	if err != nil {
		t.Fatalf("SessionHistoryService failed: %v", err)
	}
	defer closeDB()

	entries, err := history.ListSessions(context.Background(), primary.SessionFilters{Participant: "P06"})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("sessions = %d, want 1", len(entries))
	}
	if entries[0].Trials != 8 || entries[0].PrimeAnswers != 8 || entries[0].ID != summary.SessionID {
		t.Errorf("session entry = %+v", entries[0])
	}
}

func TestNewExperiment_BadSQLitePath(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Store = "sqlite"
	blocker := filepath.Join(t.TempDir(), "file")
	writeFile(t, blocker, "")
	cfg.DatabasePath = filepath.Join(blocker, "lantern.db")

	if _, err := NewExperiment(Options{Config: cfg, Script: &display.Script{}}); err == nil {
		t.Error("expected error for unusable database path")
	}
}
