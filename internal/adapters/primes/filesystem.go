// Package primes locates prime images on disk.
//
// Layout under the image directory:
//
//	prime/practice/{name}/{name}_{level}.png
//	prime/task/{list}/{name}/{name}_{level}.png
//
// The clearest level is the one shown under n-back stimuli.
package primes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// FileSource implements secondary.PrimeSource over an image directory.
type FileSource struct {
	root       string
	clearLevel int
}

// NewFileSource creates a prime source rooted at imageDir. clearLevel is the
// highest clarity level, used for the n-back primes.
func NewFileSource(imageDir string, clearLevel int) *FileSource {
	return &FileSource{root: imageDir, clearLevel: clearLevel}
}

// NBackPrimes returns the fully clear prime images, sorted by path.
func (s *FileSource) NBackPrimes(ctx context.Context, practice bool, listName string) ([]string, error) {
	dir := filepath.Join(s.root, "prime", "practice")
	if !practice {
		if listName == "" {
			return nil, fmt.Errorf("prime list name is required")
		}
		dir = filepath.Join(s.root, "prime", "task", listName)
	}

	pattern := filepath.Join(dir, "*", fmt.Sprintf("*_%d.png", s.clearLevel))
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list primes %s: %w", pattern, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// RecognitionFolders returns the per-image folders, across all lists for the task.
func (s *FileSource) RecognitionFolders(ctx context.Context, practice bool) ([]string, error) {
	pattern := filepath.Join(s.root, "prime", "task", "*", "*")
	if practice {
		pattern = filepath.Join(s.root, "prime", "practice", "*")
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list prime folders %s: %w", pattern, err)
	}

	var folders []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", m, err)
		}
		if info.IsDir() {
			folders = append(folders, m)
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// LevelImage returns folder/{name}_{level}.png where name is the folder's base name.
func (s *FileSource) LevelImage(folder string, level int) string {
	name := filepath.Base(folder)
	return filepath.Join(folder, fmt.Sprintf("%s_%d.png", name, level))
}

// MissingLevels returns the clarity images of folder that do not exist.
func (s *FileSource) MissingLevels(folder string) []string {
	var missing []string
	for level := 1; level <= s.clearLevel; level++ {
		path := s.LevelImage(folder, level)
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	return missing
}

var _ secondary.PrimeSource = (*FileSource)(nil)
