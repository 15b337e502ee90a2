package secondary

import (
	"context"
	"fmt"
)

// OrderingSource defines the secondary port for the pre-generated stimulus orderings.
// Missing or malformed orderings are configuration errors.
type OrderingSource interface {
	// Practice returns the focal image IDs of the practice block at difficulty.
	Practice(ctx context.Context, difficulty int) ([]int, error)

	// Block returns the focal image IDs of scored block index (0-based) at difficulty.
	Block(ctx context.Context, difficulty, index int) ([]int, error)
}

// PrimeSource defines the secondary port for the prime image pools.
type PrimeSource interface {
	// NBackPrimes returns the prime image paths shown under n-back stimuli.
	// The practice pool ignores listName.
	NBackPrimes(ctx context.Context, practice bool, listName string) ([]string, error)

	// RecognitionFolders returns the per-image folders of the recognition task.
	RecognitionFolders(ctx context.Context, practice bool) ([]string, error)

	// LevelImage returns the image path of folder at clarity level (1-based).
	LevelImage(folder string, level int) string
}

// BlockKey is the ordering key of scored block index (0-based) at difficulty, e.g. "2_1".
func BlockKey(difficulty, index int) string {
	return fmt.Sprintf("%d_%d", difficulty, index+1)
}

// PracticeKey is the ordering key of the practice block at difficulty, e.g. "1_practice".
func PracticeKey(difficulty int) string {
	return fmt.Sprintf("%d_practice", difficulty)
}
