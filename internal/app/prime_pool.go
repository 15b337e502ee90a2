package app

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Shuffler randomises slice order. *rand.Rand from math/rand/v2 satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// PrimePool hands out prime image paths for one block in shuffled order.
// With looping enabled an exhausted pool is reshuffled, rotating so the
// path used last is not handed out again immediately.
type PrimePool struct {
	paths   []string
	next    int
	loop    bool
	shuffle Shuffler
}

// NewPrimePool copies and shuffles paths.
func NewPrimePool(paths []string, loop bool, shuffle Shuffler) *PrimePool {
	p := &PrimePool{
		paths:   append([]string(nil), paths...),
		loop:    loop,
		shuffle: shuffle,
	}
	p.reshuffle()
	return p
}

// Len returns the number of distinct paths in the pool.
func (p *PrimePool) Len() int {
	return len(p.paths)
}

// Next returns the next path. Running out without looping is a configuration error.
func (p *PrimePool) Next() (string, error) {
	if len(p.paths) == 0 {
		return "", fmt.Errorf("%w: prime pool is empty", ErrConfiguration)
	}
	if p.next == len(p.paths) {
		if !p.loop {
			return "", fmt.Errorf("%w: prime pool exhausted after %d images", ErrConfiguration, len(p.paths))
		}
		last := p.paths[len(p.paths)-1]
		p.reshuffle()
		if len(p.paths) > 1 && p.paths[0] == last {
			p.paths = append(p.paths[1:], p.paths[0])
		}
		p.next = 0
	}
	path := p.paths[p.next]
	p.next++
	return path, nil
}

func (p *PrimePool) reshuffle() {
	if p.shuffle == nil {
		return
	}
	p.shuffle.Shuffle(len(p.paths), func(i, j int) {
		p.paths[i], p.paths[j] = p.paths[j], p.paths[i]
	})
}

// PrimeName derives the prime image ID from its path by dropping the
// extension and the trailing clarity level, e.g. ".../cat/cat_8.png" -> "cat".
func PrimeName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.LastIndex(base, "_"); i > 0 {
		return base[:i]
	}
	return base
}
