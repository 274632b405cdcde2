package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hintapp/hint/internal/logbook"
)

// DeliveryBuffer is the default capacity of the channel between the
// updater and the TUI. A full channel blocks the updater, not the
// terminal.
const DeliveryBuffer = 16

const (
	defaultInterval    = 250 * time.Millisecond
	defaultMaxAttempts = 5
)

// Updater fills a board in the background, one story per step, and
// hands each finished story to the consumer over the delivery channel.
// It is the board's single advancing goroutine.
type Updater struct {
	board       *Board
	deliveries  chan<- Story
	log         *logbook.Logbook
	interval    time.Duration
	maxAttempts int
}

// UpdaterOption customizes updater construction.
type UpdaterOption func(*Updater)

// WithInterval sets the pause between consecutive fetches.
func WithInterval(d time.Duration) UpdaterOption {
	return func(u *Updater) {
		if d > 0 {
			u.interval = d
		}
	}
}

// WithMaxAttempts sets how often one story is fetched before Run gives
// up on the feed.
func WithMaxAttempts(n int) UpdaterOption {
	return func(u *Updater) {
		if n >= 1 {
			u.maxAttempts = n
		}
	}
}

// WithLogbook routes updater progress into a logbook.
func WithLogbook(lb *logbook.Logbook) UpdaterOption {
	return func(u *Updater) {
		if lb != nil {
			u.log = lb
		}
	}
}

// NewUpdater wires an updater to the board it advances and the channel
// it delivers on.
func NewUpdater(board *Board, deliveries chan<- Story, opts ...UpdaterOption) (*Updater, error) {
	if board == nil {
		return nil, errors.New("feed: updater needs a board")
	}
	if deliveries == nil {
		return nil, errors.New("feed: updater needs a delivery channel")
	}
	u := &Updater{
		board:       board,
		deliveries:  deliveries,
		interval:    defaultInterval,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	return u, nil
}

// Run advances the board until it is filled, delivering stories in
// position order. The updater owns the delivery channel and closes it
// on return, so the consumer reads the closed channel as end of feed.
// Run returns nil once the board is filled, ctx.Err() when cancelled,
// and a wrapped fetch error when one story keeps failing past the
// attempt budget. Failed fetches never skip a slot; the same story is
// retried after the usual pause.
func (u *Updater) Run(ctx context.Context) error {
	defer close(u.deliveries)

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if u.board.IsFilled() {
			u.log.Info("feed filled with %d stories", u.board.Len())
			return nil
		}

		story, err := u.board.AdvanceOne(ctx)
		if err != nil {
			if errors.Is(err, ErrExhausted) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			attempts++
			id, _ := u.board.Next()
			if attempts >= u.maxAttempts {
				u.log.Error("giving up on story %d after %d attempts: %v", id, attempts, err)
				return fmt.Errorf("feed: story %d failed %d times: %w", id, attempts, err)
			}
			u.log.Warn("fetch story %d failed (attempt %d/%d): %v", id, attempts, u.maxAttempts, err)
			if err := u.pause(ctx); err != nil {
				return err
			}
			continue
		}
		attempts = 0

		select {
		case u.deliveries <- story:
		case <-ctx.Done():
			return ctx.Err()
		}
		u.log.Info("delivered position %d: %s", story.Position, story.Title)

		if err := u.pause(ctx); err != nil {
			return err
		}
	}
}

func (u *Updater) pause(ctx context.Context) error {
	select {
	case <-time.After(u.interval):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
