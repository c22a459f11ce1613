package poller

import (
	"context"
	"time"

	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/utils/logging"
)

// Handler processes one new mailbox entry. A handler error is logged and the
// entry is still marked processed: the firmware never retracts a line, so
// retrying a message that failed resolution would fail the same way forever.
type Handler func(ctx context.Context, entry interfaces.MailboxEntry) error

const (
	defaultInterval  = 3 * time.Second
	defaultTailLimit = 5
)

// ChannelPoller polls one mailbox log channel and dispatches unseen entries
// in key order.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type ChannelPoller struct {
	mailbox   interfaces.Mailbox
	channel   types.Channel
	handler   Handler
	interval  time.Duration
	tailLimit int
	dedup     *dedupSet
	stopCh    chan struct{}
	doneCh    chan struct{}
}

type Option func(*ChannelPoller)

func WithInterval(interval time.Duration) Option {
	return func(p *ChannelPoller) {
		p.interval = interval
	}
}

func WithTailLimit(limit int) Option {
	return func(p *ChannelPoller) {
		p.tailLimit = limit
	}
}

func WithDedupBound(maxSize int) Option {
	return func(p *ChannelPoller) {
		p.dedup = newDedupSet(maxSize)
	}
}

func New(mailbox interfaces.Mailbox, channel types.Channel, handler Handler, opts ...Option) *ChannelPoller {
	p := &ChannelPoller{
		mailbox:   mailbox,
		channel:   channel,
		handler:   handler,
		interval:  defaultInterval,
		tailLimit: defaultTailLimit,
		dedup:     newDedupSet(defaultDedupBound),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start begins the polling loop in a background goroutine
func (p *ChannelPoller) Start(ctx context.Context) error {
	logging.Default().Info("channel poller starting",
		"channel", p.channel.String(),
		"interval", p.interval.String())

	go p.run(ctx)

	return nil
}

// Stop signals the poller to stop and waits for completion
func (p *ChannelPoller) Stop() {
	close(p.stopCh)
	<-p.doneCh
	logging.Default().Info("channel poller stopped", "channel", p.channel.String())
}

func (p *ChannelPoller) run(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.poll(ctx); err != nil {
				logging.Default().Error("poll cycle failed (will retry next interval)",
					"channel", p.channel.String(), "error", err.Error())
			}

		case <-p.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("channel poller context cancelled", "channel", p.channel.String())
			return
		}
	}
}

// poll performs a single fetch-and-dispatch cycle
func (p *ChannelPoller) poll(ctx context.Context) error {
	entries, err := p.mailbox.FetchTail(ctx, p.channel, p.tailLimit)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if p.dedup.Seen(entry.Key) {
			continue
		}

		if err := p.handler(ctx, entry); err != nil {
			// Log and move on. The entry is still marked below so a message
			// that cannot be resolved is not retried every cycle.
			logging.Default().Error("handler failed for mailbox entry",
				"channel", p.channel.String(),
				"key", entry.Key,
				"message", entry.Message,
				"error", err.Error())
		}

		p.dedup.Mark(entry.Key)
	}

	return nil
}
