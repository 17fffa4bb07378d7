package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"diffusedbrush/internal/platform"
	"diffusedbrush/internal/services"
)

const (
	// threadDepth covers top-level comments and their direct replies.
	threadDepth = 2
	// maxMoreRequests bounds the morechildren calls spent on one thread read.
	maxMoreRequests = 20
	moreBatchSize   = 100
)

// expandMore loads the comments hidden behind stubs, down to threadDepth.
// A stub left unexpanded marks its parent incomplete.
func (c *Client) expandMore(ctx context.Context, thread *platform.Thread, stubs []moreData) error {
	linkName := kindLink + "_" + thread.ID
	index := make(map[string]int, len(thread.Comments))
	for i, comment := range thread.Comments {
		index[kindComment+"_"+comment.ID] = i
	}
	tracked := func(parent string) bool {
		if parent == linkName {
			return true
		}
		_, ok := index[parent]
		return ok
	}
	markIncomplete := func(parent string) {
		if parent == linkName {
			thread.Incomplete = true
			return
		}
		if i, ok := index[parent]; ok {
			thread.Comments[i].Incomplete = true
		}
	}

	requests := 0
	for len(stubs) > 0 {
		stub := stubs[0]
		stubs = stubs[1:]
		if !tracked(stub.ParentID) {
			continue
		}
		// "Continue this thread" stubs carry no ids to fetch.
		if len(stub.Children) == 0 {
			markIncomplete(stub.ParentID)
			continue
		}
		for start := 0; start < len(stub.Children); start += moreBatchSize {
			if requests >= maxMoreRequests {
				markIncomplete(stub.ParentID)
				break
			}
			requests++
			end := min(start+moreBatchSize, len(stub.Children))
			things, err := c.moreChildren(ctx, linkName, stub.Children[start:end])
			if err != nil {
				return err
			}
			found, err := attachThings(thread, index, linkName, things)
			if err != nil {
				return classify("expand comments", "Malformed collapsed comments", err)
			}
			stubs = append(stubs, found...)
		}
	}
	return nil
}

// attachThings places a flat morechildren result into the tree. Top-level
// comments go first so their replies find a parent.
func attachThings(thread *platform.Thread, index map[string]int, linkName string, things []thing) ([]moreData, error) {
	var replies []commentData
	var stubs []moreData
	for _, t := range things {
		switch t.Kind {
		case kindComment:
			var data commentData
			if err := json.Unmarshal(t.Data, &data); err != nil {
				return nil, fmt.Errorf("decode comment: %w", err)
			}
			if data.ParentID != linkName {
				replies = append(replies, data)
				continue
			}
			name := kindComment + "_" + data.ID
			if _, dup := index[name]; dup {
				continue
			}
			index[name] = len(thread.Comments)
			thread.Comments = append(thread.Comments, toComment(data))
		case kindMore:
			var stub moreData
			if err := json.Unmarshal(t.Data, &stub); err != nil {
				return nil, fmt.Errorf("decode more stub: %w", err)
			}
			stubs = append(stubs, stub)
		}
	}
	for _, data := range replies {
		if i, ok := index[data.ParentID]; ok {
			thread.Comments[i].Replies = append(thread.Comments[i].Replies, toComment(data))
		}
	}
	return stubs, nil
}

func (c *Client) moreChildren(ctx context.Context, linkName string, ids []string) ([]thing, error) {
	query := url.Values{
		"api_type":       {"json"},
		"link_id":        {linkName},
		"children":       {strings.Join(ids, ",")},
		"limit_children": {"false"},
		"raw_json":       {"1"},
	}
	var resp moreChildrenResponse
	if err := c.call(ctx, http.MethodGet, "/api/morechildren", query, nil, &resp); err != nil {
		return nil, classify("expand comments", "Failed to load collapsed comments", err)
	}
	if len(resp.JSON.Errors) > 0 {
		return nil, services.Wrap(services.ErrTransient, component, "expand comments", "Collapsed comments rejected",
			fmt.Errorf("reddit api error: %v", resp.JSON.Errors[0]))
	}
	return resp.JSON.Data.Things, nil
}
