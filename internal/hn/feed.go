package hn

import (
	"fmt"
	"strings"
)

// Feed identifies one of the ranked story lists the API exposes.
type Feed string

const (
	FeedTop  Feed = "top"
	FeedNew  Feed = "new"
	FeedAsk  Feed = "ask"
	FeedShow Feed = "show"
	FeedJob  Feed = "job"
)

// ParseFeed maps user input onto a Feed.
func ParseFeed(value string) (Feed, error) {
	feed := Feed(strings.ToLower(strings.TrimSpace(value)))
	switch feed {
	case FeedTop, FeedNew, FeedAsk, FeedShow, FeedJob:
		return feed, nil
	}
	return "", fmt.Errorf("hn: unknown feed %q (want top, new, ask, show or job)", value)
}

// endpoint returns the API path serving this feed's ranked id list.
func (f Feed) endpoint() string {
	switch f {
	case FeedNew:
		return "newstories.json"
	case FeedAsk:
		return "askstories.json"
	case FeedShow:
		return "showstories.json"
	case FeedJob:
		return "jobstories.json"
	default:
		return "topstories.json"
	}
}

// Label returns the feed name the TUI shows in its header.
func (f Feed) Label() string {
	switch f {
	case FeedNew:
		return "New"
	case FeedAsk:
		return "Ask"
	case FeedShow:
		return "Show"
	case FeedJob:
		return "Jobs"
	default:
		return "Top"
	}
}
