package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"diffusedbrush/internal/docstore"
	"diffusedbrush/internal/services"
)

const component = "queue"

// Queue is the durable submission queue.
type Queue struct {
	doc docstore.Document
}

// New returns a queue persisted in doc.
func New(doc docstore.Document) *Queue {
	return &Queue{doc: doc}
}

// Location describes where the queue is stored.
func (q *Queue) Location() string {
	return q.doc.Location()
}

// Merge adds every candidate whose origin link is not already queued and
// persists the result. Candidates repeated within the batch are added once.
func (q *Queue) Merge(ctx context.Context, candidates []Submission) (MergeResult, error) {
	items, err := q.load(ctx)
	if err != nil {
		return MergeResult{}, err
	}

	present := make(map[string]struct{}, len(items)+len(candidates))
	for _, item := range items {
		present[item.OriginLink] = struct{}{}
	}

	var result MergeResult
	accepted := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		link := strings.TrimSpace(candidate.OriginLink)
		if link == "" {
			continue
		}
		candidate.OriginLink = link
		if _, seen := accepted[link]; seen {
			continue
		}
		accepted[link] = struct{}{}
		if _, queued := present[link]; !queued {
			present[link] = struct{}{}
			items = append(items, candidate)
			result.Added = append(result.Added, candidate)
		}
		result.Accepted = append(result.Accepted, candidate)
	}

	if len(result.Added) == 0 {
		return result, nil
	}
	if err := q.save(ctx, items); err != nil {
		return MergeResult{}, err
	}
	return result, nil
}

// PeekOldest returns the head of the queue without removing it.
func (q *Queue) PeekOldest(ctx context.Context) (Submission, bool, error) {
	items, err := q.load(ctx)
	if err != nil || len(items) == 0 {
		return Submission{}, false, err
	}
	return items[0], true, nil
}

// PopOldest removes and returns the head of the queue.
func (q *Queue) PopOldest(ctx context.Context) (Submission, bool, error) {
	items, err := q.load(ctx)
	if err != nil || len(items) == 0 {
		return Submission{}, false, err
	}
	head := items[0]
	if err := q.save(ctx, items[1:]); err != nil {
		return Submission{}, false, err
	}
	return head, true, nil
}

// PopHead removes the head only when its origin link matches originLink.
// A mismatch or an empty queue is an invariant violation and nothing is
// written.
func (q *Queue) PopHead(ctx context.Context, originLink string) (Submission, error) {
	items, err := q.load(ctx)
	if err != nil {
		return Submission{}, err
	}
	if len(items) == 0 {
		return Submission{}, services.Wrap(services.ErrInvariant, component, "pop",
			fmt.Sprintf("Queue is empty; expected head %s", originLink), nil)
	}
	head := items[0]
	if head.OriginLink != originLink {
		return Submission{}, services.Wrap(services.ErrInvariant, component, "pop",
			fmt.Sprintf("Queue head is %s; expected %s", head.OriginLink, originLink), nil)
	}
	if err := q.save(ctx, items[1:]); err != nil {
		return Submission{}, err
	}
	return head, nil
}

// List returns every queued submission, oldest first.
func (q *Queue) List(ctx context.Context) ([]Submission, error) {
	return q.load(ctx)
}

// Len returns the number of queued submissions.
func (q *Queue) Len(ctx context.Context) (int, error) {
	items, err := q.load(ctx)
	return len(items), err
}

// Remove drops the submission with the given origin link. It reports whether
// a submission was removed.
func (q *Queue) Remove(ctx context.Context, originLink string) (bool, error) {
	items, err := q.load(ctx)
	if err != nil {
		return false, err
	}
	originLink = strings.TrimSpace(originLink)
	idx := slices.IndexFunc(items, func(s Submission) bool { return s.OriginLink == originLink })
	if idx < 0 {
		return false, nil
	}
	if err := q.save(ctx, slices.Delete(items, idx, idx+1)); err != nil {
		return false, err
	}
	return true, nil
}

// Clear empties the queue and returns how many submissions were dropped.
func (q *Queue) Clear(ctx context.Context) (int, error) {
	items, err := q.load(ctx)
	if err != nil {
		return 0, err
	}
	if err := q.save(ctx, nil); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (q *Queue) load(ctx context.Context) ([]Submission, error) {
	data, err := q.doc.Load(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "load", "Failed to read queue document", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var items []Submission
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, services.Wrap(services.ErrInvariant, component, "load",
			fmt.Sprintf("Queue document %s is not a JSON array of submissions", q.doc.Location()), err)
	}
	if err := checkInvariants(items); err != nil {
		return nil, services.Wrap(services.ErrInvariant, component, "load",
			fmt.Sprintf("Queue document %s is inconsistent", q.doc.Location()), err)
	}
	sortSubmissions(items)
	return items, nil
}

func (q *Queue) save(ctx context.Context, items []Submission) error {
	if items == nil {
		items = []Submission{}
	}
	sortSubmissions(items)
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrInvariant, component, "save", "Failed to encode queue", err)
	}
	if err := q.doc.Replace(ctx, data); err != nil {
		return services.Wrap(services.ErrTransient, component, "save", "Failed to persist queue document", err)
	}
	return nil
}

func checkInvariants(items []Submission) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.OriginLink]; dup {
			return fmt.Errorf("duplicate origin_link %q", item.OriginLink)
		}
		seen[item.OriginLink] = struct{}{}
	}
	return nil
}

func sortSubmissions(items []Submission) {
	slices.SortStableFunc(items, func(a, b Submission) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})
}
