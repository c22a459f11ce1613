package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/taller-iot/marcaje/pkg/service/poller"
)

// Poller holds CLI flags for the channel polling loops
type Poller struct {
	interval   time.Duration
	tailLimit  int
	dedupBound int
}

// Flags returns CLI flags for poller configuration
func (p *Poller) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "Interval between mailbox poll cycles",
			Value:       3 * time.Second,
			Sources:     cli.EnvVars("MARCAJE_POLL_INTERVAL"),
			Destination: &p.interval,
		},
		&cli.IntFlag{
			Name:        "poll-tail-limit",
			Usage:       "Number of trailing entries fetched per channel per cycle",
			Value:       5,
			Sources:     cli.EnvVars("MARCAJE_POLL_TAIL_LIMIT"),
			Destination: &p.tailLimit,
		},
		&cli.IntFlag{
			Name:        "poll-dedup-bound",
			Usage:       "Processed-key set size that triggers a full dedup reset",
			Value:       1000,
			Sources:     cli.EnvVars("MARCAJE_POLL_DEDUP_BOUND"),
			Destination: &p.dedupBound,
		},
	}
}

// Options returns poller options built from the flags
func (p *Poller) Options() []poller.Option {
	return []poller.Option{
		poller.WithInterval(p.interval),
		poller.WithTailLimit(p.tailLimit),
		poller.WithDedupBound(p.dedupBound),
	}
}
