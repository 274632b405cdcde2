// Package feed holds the incremental story board and the background
// updater that fills it.
package feed

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/hintapp/hint/internal/hn"
)

var (
	// ErrExhausted reports an advance or insert on an already filled board.
	ErrExhausted = errors.New("feed: board already filled")
	// ErrIndexOutOfRange reports an insert outside the materialized prefix.
	ErrIndexOutOfRange = errors.New("feed: insert index out of range")
)

// ItemFetcher is the part of the API client the board needs.
type ItemFetcher interface {
	Item(ctx context.Context, id uint64) (hn.Item, error)
}

var _ ItemFetcher = (*hn.Client)(nil)

// Board holds the incremental state of one feed read: the ranked ids,
// the materialized stories, and the limit. The materialized stories
// always occupy positions [0, len) in ranked order, so their count is
// also the cursor into the id list. Reads are safe from any goroutine;
// advancing is reserved for a single updater goroutine.
type Board struct {
	fetcher ItemFetcher

	mu      sync.RWMutex
	ids     []uint64
	stories []Story
	limit   int
}

// NewBoard builds a board over the ranked ids. The board materializes
// at most limit stories; limit is clamped to [0, len(ids)]. A nil or
// empty id list yields a board that is already filled, which is how
// startup degrades when the id fetch fails.
func NewBoard(fetcher ItemFetcher, ids []uint64, limit int) (*Board, error) {
	if fetcher == nil {
		return nil, errors.New("feed: board needs an item fetcher")
	}
	owned := make([]uint64, len(ids))
	copy(owned, ids)
	if limit < 0 {
		limit = 0
	}
	if limit > len(owned) {
		limit = len(owned)
	}
	return &Board{fetcher: fetcher, ids: owned, limit: limit}, nil
}

// IsFilled reports whether every slot up to the limit is materialized.
func (b *Board) IsFilled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.stories) >= b.limit
}

// Len returns how many stories have been materialized so far.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.stories)
}

// Limit returns how many stories this board materializes in total.
func (b *Board) Limit() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.limit
}

// IDs returns a copy of the ranked identifier list.
func (b *Board) IDs() []uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]uint64, len(b.ids))
	copy(out, b.ids)
	return out
}

// Next returns the identifier the next advance will materialize, or
// false when the board is filled.
func (b *Board) Next() (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.stories) >= b.limit {
		return 0, false
	}
	return b.ids[len(b.stories)], true
}

// AdvanceOne materializes the next slot: it fetches the item behind the
// cursor identifier, shapes it into a Story and appends it. The fetch
// runs outside the board lock, so readers never wait on the network. A
// failed fetch leaves the board untouched and the same slot is retried
// by the next call. Returns ErrExhausted once the board is filled.
func (b *Board) AdvanceOne(ctx context.Context) (Story, error) {
	b.mu.RLock()
	position := len(b.stories)
	if position >= b.limit {
		b.mu.RUnlock()
		return Story{}, ErrExhausted
	}
	id := b.ids[position]
	b.mu.RUnlock()

	item, err := b.fetcher.Item(ctx, id)
	if err != nil {
		return Story{}, fmt.Errorf("feed: fetch story %d: %w", id, err)
	}

	story := NewStory(position, item)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.insertLocked(position, story); err != nil {
		return Story{}, err
	}
	return story, nil
}

// InsertAt places story at index in the materialized prefix, shifting
// later stories down. The board owns positions: the inserted story and
// everything after it are renumbered to match their slots. Most callers
// want AdvanceOne instead.
func (b *Board) InsertAt(index int, story Story) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.insertLocked(index, story)
}

func (b *Board) insertLocked(index int, story Story) error {
	if len(b.stories) >= b.limit {
		return ErrExhausted
	}
	if index < 0 || index > len(b.stories) {
		return ErrIndexOutOfRange
	}
	b.stories = append(b.stories, Story{})
	copy(b.stories[index+1:], b.stories[index:])
	b.stories[index] = story
	for i := index; i < len(b.stories); i++ {
		b.stories[i].Position = i
	}
	return nil
}

// Stories returns an iterator over a snapshot of the materialized
// stories, in position order. The snapshot is taken when Stories is
// called, so a delivery landing mid-iteration neither appears nor tears
// the sequence. The sequence can be ranged more than once; call Stories
// again for a fresh view.
func (b *Board) Stories() iter.Seq[Story] {
	snapshot := b.snapshot()
	return func(yield func(Story) bool) {
		for _, story := range snapshot {
			if !yield(story) {
				return
			}
		}
	}
}

func (b *Board) snapshot() []Story {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Story, len(b.stories))
	copy(out, b.stories)
	return out
}
