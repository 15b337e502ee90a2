package app

import "errors"

// ErrConfiguration marks failures caused by missing or inconsistent experiment
// resources (orderings, prime pools, settings). They end the session.
var ErrConfiguration = errors.New("configuration error")
