package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"diffusedbrush/internal/platform"
	"diffusedbrush/internal/services"
)

var _ platform.Platform = (*Client)(nil)

// ReadThread fetches a post and its comment tree two levels deep, which is
// enough to see the bot's replies under each top-level comment. Collapsed
// "more" stubs at those levels are expanded through /api/morechildren.
func (c *Client) ReadThread(ctx context.Context, id string) (platform.Thread, error) {
	pid, err := postID(id)
	if err != nil {
		return platform.Thread{}, services.Wrap(services.ErrValidation, component, "read thread", "Invalid thread id", err)
	}
	query := url.Values{"raw_json": {"1"}, "limit": {"500"}, "depth": {strconv.Itoa(threadDepth)}}
	var listings []listing
	if err := c.call(ctx, http.MethodGet, "/comments/"+pid, query, nil, &listings); err != nil {
		return platform.Thread{}, classify("read thread", "Failed to read thread "+pid, err)
	}
	if len(listings) < 2 {
		return platform.Thread{}, services.Wrap(services.ErrTransient, component, "read thread",
			fmt.Sprintf("Unexpected thread payload with %d listings", len(listings)), nil)
	}

	thread := platform.Thread{ID: pid}
	for _, child := range listings[0].Data.Children {
		if child.Kind == kindLink {
			record, err := decodeLink(child.Data)
			if err != nil {
				return platform.Thread{}, classify("read thread", "Malformed thread post", err)
			}
			thread.Title = record.Title
		}
	}
	comments, stubs, err := decodeComments(listings[1].Data.Children, threadDepth)
	if err != nil {
		return platform.Thread{}, classify("read thread", "Malformed comment tree", err)
	}
	thread.Comments = comments
	if err := c.expandMore(ctx, &thread, stubs); err != nil {
		return platform.Thread{}, err
	}
	return thread, nil
}

// PostTopLevel submits a link post to the configured subreddit.
func (c *Client) PostTopLevel(ctx context.Context, title, link string) error {
	form := url.Values{
		"api_type":    {"json"},
		"kind":        {"link"},
		"sr":          {c.cfg.Subreddit},
		"title":       {title},
		"url":         {link},
		"resubmit":    {"true"},
		"sendreplies": {"false"},
	}
	if flair := strings.TrimSpace(c.cfg.FlairID); flair != "" {
		form.Set("flair_id", flair)
	}
	var resp apiResponse
	if err := c.call(ctx, http.MethodPost, "/api/submit", nil, form, &resp); err != nil {
		return classify("submit", "Failed to submit post", err)
	}
	if err := resp.err(); err != nil {
		return services.Wrap(services.ErrTransient, component, "submit", "Submission rejected", err)
	}
	return nil
}

// MostRecentByIdentity lists the bot account's newest submissions.
func (c *Client) MostRecentByIdentity(ctx context.Context, limit int) ([]platform.Record, error) {
	if limit <= 0 {
		limit = 1
	}
	query := url.Values{"raw_json": {"1"}, "sort": {"new"}, "limit": {strconv.Itoa(limit)}}
	var page listing
	path := "/user/" + url.PathEscape(c.Identity()) + "/submitted"
	if err := c.call(ctx, http.MethodGet, path, query, nil, &page); err != nil {
		return nil, classify("list submitted", "Failed to list bot submissions", err)
	}
	records := make([]platform.Record, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		if child.Kind != kindLink {
			continue
		}
		record, err := decodeLink(child.Data)
		if err != nil {
			return nil, classify("list submitted", "Malformed submission listing", err)
		}
		records = append(records, record)
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

// Reply posts a comment under target.
func (c *Client) Reply(ctx context.Context, target, body string) error {
	name, err := fullname(target)
	if err != nil {
		return services.Wrap(services.ErrValidation, component, "reply", "Invalid reply target", err)
	}
	form := url.Values{"api_type": {"json"}, "thing_id": {name}, "text": {body}}
	var resp apiResponse
	if err := c.call(ctx, http.MethodPost, "/api/comment", nil, form, &resp); err != nil {
		return classify("reply", "Failed to reply to "+name, err)
	}
	if err := resp.err(); err != nil {
		return services.Wrap(services.ErrTransient, component, "reply", "Reply to "+name+" rejected", err)
	}
	return nil
}

// GetByID looks up a post or comment. A post taken down by moderators or
// the platform reports an empty author, the same as a deleted one.
func (c *Client) GetByID(ctx context.Context, target string) (platform.Item, error) {
	name, err := fullname(target)
	if err != nil {
		return platform.Item{}, services.Wrap(services.ErrValidation, component, "lookup", "Invalid lookup target", err)
	}
	var page listing
	query := url.Values{"raw_json": {"1"}, "id": {name}}
	if err := c.call(ctx, http.MethodGet, "/api/info", query, nil, &page); err != nil {
		return platform.Item{}, classify("lookup", "Failed to look up "+name, err)
	}
	for _, child := range page.Data.Children {
		switch child.Kind {
		case kindLink:
			var data linkData
			if err := decodeInto(child.Data, &data); err != nil {
				return platform.Item{}, classify("lookup", "Malformed post", err)
			}
			author := normalizeAuthor(data.Author)
			if data.RemovedByCategory != nil && *data.RemovedByCategory != "" {
				author = ""
			}
			return platform.Item{ID: data.ID, Author: author, Permalink: permalinkURL(data.Permalink)}, nil
		case kindComment:
			var data commentData
			if err := decodeInto(child.Data, &data); err != nil {
				return platform.Item{}, classify("lookup", "Malformed comment", err)
			}
			return platform.Item{ID: data.ID, Author: normalizeAuthor(data.Author), Permalink: permalinkURL(data.Permalink)}, nil
		}
	}
	return platform.Item{}, services.Wrap(services.ErrNotFound, component, "lookup", name+" does not exist", nil)
}

// Approve marks one of the bot's posts as moderator-approved.
func (c *Client) Approve(ctx context.Context, id string) error {
	pid, err := postID(id)
	if err != nil {
		return services.Wrap(services.ErrValidation, component, "approve", "Invalid post id", err)
	}
	form := url.Values{"id": {kindLink + "_" + pid}}
	if err := c.call(ctx, http.MethodPost, "/api/approve", nil, form, nil); err != nil {
		return classify("approve", "Failed to approve "+pid, err)
	}
	return nil
}
