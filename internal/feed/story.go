package feed

import "github.com/hintapp/hint/internal/hn"

// Kind classifies a materialized story.
type Kind string

const (
	KindStory   Kind = "story"
	KindAsk     Kind = "ask"
	KindComment Kind = "comment"
	KindJob     Kind = "job"
	KindPoll    Kind = "poll"
)

// Fallbacks for fields the API may omit.
const (
	fallbackAuthor = "unknown"
	fallbackTitle  = "Untitled"
	fallbackURL    = "http://example.com"
)

// Story is one materialized entry of a board. Position is the story's
// slot in the ranked order, counted from zero.
type Story struct {
	Position    int
	Author      string
	Title       string
	URL         string
	Kind        Kind
	Score       int
	Time        int64
	Descendants int
}

// NewStory shapes a raw API item into the story occupying position.
// Absent fields get their fallbacks here, so everything downstream can
// treat the story as complete.
func NewStory(position int, item hn.Item) Story {
	story := Story{
		Position:    position,
		Author:      item.By,
		Title:       item.Title,
		URL:         item.URL,
		Kind:        classify(item),
		Score:       item.Score,
		Time:        item.Time,
		Descendants: item.Descendants,
	}
	if story.Author == "" {
		story.Author = fallbackAuthor
	}
	if story.Title == "" {
		story.Title = fallbackTitle
	}
	if story.URL == "" {
		story.URL = fallbackURL
	}
	return story
}

// classify maps the API item type onto a Kind. A story without a URL is
// a self post, which Hacker News presents as Ask HN.
func classify(item hn.Item) Kind {
	switch item.Type {
	case "story":
		if item.URL == "" {
			return KindAsk
		}
		return KindStory
	case "comment":
		return KindComment
	case "job":
		return KindJob
	case "poll", "pollopt":
		return KindPoll
	default:
		return KindStory
	}
}
