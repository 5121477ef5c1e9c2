package blockfetch

import (
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bitcoin-sv/blockfetch/internal/logger"
)

const slogLvlTrace = logger.LevelTrace

type Option func(f *Fetcher)

// WithAnnouncementTTL sets for how long an announced block hash is not logged again.
func WithAnnouncementTTL(ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.announcementTTL = ttl
	}
}

func WithStats(s *Stats) Option {
	return func(f *Fetcher) {
		f.stats = s
	}
}

func WithNow(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

func WithTracer(attr ...attribute.KeyValue) Option {
	return func(f *Fetcher) {
		f.tracingEnabled = true
		if len(attr) > 0 {
			f.tracingAttributes = append(f.tracingAttributes, attr...)
		}

		_, file, _, ok := runtime.Caller(1)
		if ok {
			f.tracingAttributes = append(f.tracingAttributes, attribute.String("file", file))
		}
	}
}
