package reddit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"diffusedbrush/internal/platform"
)

const (
	kindComment = "t1"
	kindLink    = "t3"
	kindListing = "Listing"
	kindMore    = "more"
	siteURL     = "https://reddit.com"
)

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []thing `json:"children"`
		After    string  `json:"after"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type commentData struct {
	ID         string          `json:"id"`
	ParentID   string          `json:"parent_id"`
	Author     string          `json:"author"`
	Body       string          `json:"body"`
	Permalink  string          `json:"permalink"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

type linkData struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	URL               string  `json:"url"`
	Author            string  `json:"author"`
	Permalink         string  `json:"permalink"`
	CreatedUTC        float64 `json:"created_utc"`
	RemovedByCategory *string `json:"removed_by_category"`
}

// moreData is a stub standing in for comments the listing left out.
// Children is empty for "continue this thread" stubs.
type moreData struct {
	ID       string   `json:"id"`
	ParentID string   `json:"parent_id"`
	Count    int      `json:"count"`
	Children []string `json:"children"`
}

type moreChildrenResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

// apiResponse is the envelope returned by api_type=json form endpoints.
type apiResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
	} `json:"json"`
}

func (r apiResponse) err() error {
	if len(r.JSON.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("reddit api error: %v", r.JSON.Errors[0])
}

func permalinkURL(path string) string {
	if path == "" {
		return ""
	}
	return siteURL + path
}

// decodeComments converts a listing's children, descending depth levels.
// Stubs found at those levels are returned for expansion.
func decodeComments(children []thing, depth int) ([]platform.Comment, []moreData, error) {
	comments := make([]platform.Comment, 0, len(children))
	var stubs []moreData
	for _, child := range children {
		switch child.Kind {
		case kindMore:
			var stub moreData
			if err := json.Unmarshal(child.Data, &stub); err != nil {
				return nil, nil, fmt.Errorf("decode more stub: %w", err)
			}
			stubs = append(stubs, stub)
		case kindComment:
			var data commentData
			if err := json.Unmarshal(child.Data, &data); err != nil {
				return nil, nil, fmt.Errorf("decode comment: %w", err)
			}
			comment := toComment(data)
			// Replies is "" when empty and a Listing object otherwise.
			if trimmed := bytes.TrimSpace(data.Replies); depth > 1 && len(trimmed) > 0 && trimmed[0] == '{' {
				var replies listing
				if err := json.Unmarshal(trimmed, &replies); err != nil {
					return nil, nil, fmt.Errorf("decode replies of %s: %w", data.ID, err)
				}
				nested, nestedStubs, err := decodeComments(replies.Data.Children, depth-1)
				if err != nil {
					return nil, nil, err
				}
				comment.Replies = nested
				stubs = append(stubs, nestedStubs...)
			}
			comments = append(comments, comment)
		}
	}
	return comments, stubs, nil
}

func toComment(data commentData) platform.Comment {
	return platform.Comment{
		ID:        data.ID,
		Author:    normalizeAuthor(data.Author),
		Body:      data.Body,
		CreatedAt: int64(data.CreatedUTC),
		Permalink: permalinkURL(data.Permalink),
	}
}

func decodeLink(raw json.RawMessage) (platform.Record, error) {
	var data linkData
	if err := json.Unmarshal(raw, &data); err != nil {
		return platform.Record{}, fmt.Errorf("decode post: %w", err)
	}
	return platform.Record{
		ID:        data.ID,
		Title:     data.Title,
		URL:       data.URL,
		Author:    normalizeAuthor(data.Author),
		Permalink: permalinkURL(data.Permalink),
		CreatedAt: int64(data.CreatedUTC),
	}, nil
}

func normalizeAuthor(author string) string {
	if platform.IsGone(author) {
		return ""
	}
	return author
}

func decodeInto(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode thing: %w", err)
	}
	return nil
}
