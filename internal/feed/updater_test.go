package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func collect(t *testing.T, ch <-chan Story) []Story {
	t.Helper()
	var out []Story
	for story := range ch {
		out = append(out, story)
	}
	return out
}

func newTestUpdater(t *testing.T, board *Board, ch chan Story, opts ...UpdaterOption) *Updater {
	t.Helper()
	opts = append([]UpdaterOption{WithInterval(time.Millisecond)}, opts...)
	updater, err := NewUpdater(board, ch, opts...)
	if err != nil {
		t.Fatalf("new updater: %v", err)
	}
	return updater
}

func TestRunDeliversEveryStoryInOrder(t *testing.T) {
	fetcher := &fakeFetcher{}
	board := newTestBoard(t, fetcher, []uint64{7, 8, 9}, 3)
	ch := make(chan Story, 3)
	updater := newTestUpdater(t, board, ch)

	if err := updater.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	stories := collect(t, ch)
	if len(stories) != 3 {
		t.Fatalf("delivered %d stories, want 3", len(stories))
	}
	for i, wantTitle := range []string{"story-7", "story-8", "story-9"} {
		if stories[i].Position != i {
			t.Fatalf("delivery %d has position %d", i, stories[i].Position)
		}
		if stories[i].Title != wantTitle {
			t.Fatalf("delivery %d = %q, want %q", i, stories[i].Title, wantTitle)
		}
	}
	if !board.IsFilled() {
		t.Fatal("board not filled after run")
	}
	if fetcher.callCount() != 3 {
		t.Fatalf("fetch calls = %d, want 3", fetcher.callCount())
	}
}

func TestRunClosesChannelWithoutFetchesOnEmptyBoard(t *testing.T) {
	fetcher := &fakeFetcher{}
	board := newTestBoard(t, fetcher, nil, 11)
	ch := make(chan Story, 1)
	updater := newTestUpdater(t, board, ch)

	if err := updater.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stories := collect(t, ch); len(stories) != 0 {
		t.Fatalf("delivered %d stories, want none", len(stories))
	}
	if fetcher.callCount() != 0 {
		t.Fatalf("fetch calls = %d, want none", fetcher.callCount())
	}
}

func TestRunRetriesFailedSlotWithoutSkipping(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[uint64]int{1: 1}}
	board := newTestBoard(t, fetcher, []uint64{1, 2}, 2)
	ch := make(chan Story, 2)
	updater := newTestUpdater(t, board, ch)

	if err := updater.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	stories := collect(t, ch)
	if len(stories) != 2 {
		t.Fatalf("delivered %d stories, want 2", len(stories))
	}
	if stories[0].Position != 0 || stories[0].Title != "story-1" {
		t.Fatalf("first delivery = %+v, want story-1 at position 0", stories[0])
	}
	if stories[1].Position != 1 || stories[1].Title != "story-2" {
		t.Fatalf("second delivery = %+v, want story-2 at position 1", stories[1])
	}
	if fetcher.callCount() != 3 {
		t.Fatalf("fetch calls = %d, want 3 (one retry)", fetcher.callCount())
	}
}

func TestRunResetsAttemptBudgetPerStory(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[uint64]int{1: 1, 2: 1}}
	board := newTestBoard(t, fetcher, []uint64{1, 2}, 2)
	ch := make(chan Story, 2)
	updater := newTestUpdater(t, board, ch, WithMaxAttempts(2))

	if err := updater.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stories := collect(t, ch); len(stories) != 2 {
		t.Fatalf("delivered %d stories, want 2", len(stories))
	}
}

func TestRunGivesUpWhenOneSlotKeepsFailing(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[uint64]int{1: 100}}
	board := newTestBoard(t, fetcher, []uint64{1, 2}, 2)
	ch := make(chan Story, 2)
	updater := newTestUpdater(t, board, ch, WithMaxAttempts(3))

	err := updater.Run(context.Background())
	if err == nil {
		t.Fatal("expected run to give up")
	}
	if !strings.Contains(err.Error(), "story 1") {
		t.Fatalf("err = %v, want the failing id named", err)
	}
	if fetcher.callCount() != 3 {
		t.Fatalf("fetch calls = %d, want exactly the attempt budget", fetcher.callCount())
	}
	if stories := collect(t, ch); len(stories) != 0 {
		t.Fatalf("delivered %d stories, want none", len(stories))
	}
	if board.Len() != 0 {
		t.Fatalf("board len = %d, failed slot must stay empty", board.Len())
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	fetcher := &fakeFetcher{}
	board := newTestBoard(t, fetcher, []uint64{1, 2, 3}, 3)
	ch := make(chan Story)
	updater := newTestUpdater(t, board, ch, WithInterval(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- updater.Run(ctx) }()

	first := <-ch
	if first.Position != 0 {
		t.Fatalf("first delivery position = %d, want 0", first.Position)
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("run err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("updater did not stop after cancel")
	}
	// The channel is closed on the way out.
	for range ch {
	}
}

func TestRunStopsWhileBlockedOnDelivery(t *testing.T) {
	fetcher := &fakeFetcher{}
	board := newTestBoard(t, fetcher, []uint64{1, 2}, 2)
	ch := make(chan Story)
	updater := newTestUpdater(t, board, ch)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- updater.Run(ctx) }()

	// Never receive; the updater is stuck on its first send.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("run err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("updater did not abandon the blocked send")
	}
}

func TestNewUpdaterValidates(t *testing.T) {
	board := newTestBoard(t, &fakeFetcher{}, nil, 0)
	if _, err := NewUpdater(nil, make(chan Story)); err == nil {
		t.Fatal("expected error for nil board")
	}
	if _, err := NewUpdater(board, nil); err == nil {
		t.Fatal("expected error for nil channel")
	}
}
