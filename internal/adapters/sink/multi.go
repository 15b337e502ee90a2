package sink

import (
	"context"

	"go.uber.org/multierr"

	"github.com/lantern-lab/lantern/internal/ports/secondary"
)

// Multi fans every call out to several sinks. Append stops at the first
// failure; Flush and Close reach every sink and combine the errors.
type Multi struct {
	sinks []secondary.RecordSink
}

// NewMulti creates a sink writing to all of sinks in order.
func NewMulti(sinks ...secondary.RecordSink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Append(ctx context.Context, rec secondary.Record) error {
	for _, s := range m.sinks {
		if err := s.Append(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *Multi) Flush(ctx context.Context, section string) error {
	var err error
	for _, s := range m.sinks {
		err = multierr.Append(err, s.Flush(ctx, section))
	}
	return err
}

func (m *Multi) Close() error {
	var err error
	for _, s := range m.sinks {
		err = multierr.Append(err, s.Close())
	}
	return err
}

var _ secondary.RecordSink = (*Multi)(nil)
