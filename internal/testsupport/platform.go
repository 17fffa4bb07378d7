package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"diffusedbrush/internal/platform"
	"diffusedbrush/internal/services"
)

// Platform operation names accepted by FakePlatform.Fail.
const (
	OpReadThread = "read_thread"
	OpPost       = "post"
	OpRecent     = "recent"
	OpReply      = "reply"
	OpGet        = "get"
	OpApprove    = "approve"
)

// FakeReply records one Reply call.
type FakeReply struct {
	Target string
	Body   string
}

type failure struct {
	after int
	err   error
}

// FakePlatform is an in-memory platform.Platform. Replies under intake
// comments become visible in later ReadThread calls, and replies under
// published posts become that post's comment tree.
type FakePlatform struct {
	mu sync.Mutex

	name       string
	thread     platform.Thread
	records    []platform.Record
	postThread map[string][]platform.Comment
	items      map[string]platform.Item
	replies    []FakeReply
	approved   []string
	calls      map[string]int
	failures   map[string]failure
	seq        int
	lagCalls   int
	pendingLag int
}

// NewFakePlatform creates an empty platform acting as identity with an
// intake thread named threadID.
func NewFakePlatform(identity, threadID string) *FakePlatform {
	return &FakePlatform{
		name:       identity,
		thread:     platform.Thread{ID: threadID, Title: "Submit your subjects"},
		postThread: make(map[string][]platform.Comment),
		items:      make(map[string]platform.Item),
		calls:      make(map[string]int),
		failures:   make(map[string]failure),
	}
}

var _ platform.Platform = (*FakePlatform)(nil)

// AddSubjectComment adds a top-level comment to the intake thread and returns
// its permalink.
func (f *FakePlatform) AddSubjectComment(author, body string, createdAt int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := fmt.Sprintf("c%d", f.seq)
	permalink := fmt.Sprintf("https://reddit.com/r/test/comments/%s/_/%s/", f.thread.ID, id)
	f.thread.Comments = append(f.thread.Comments, platform.Comment{
		ID:        id,
		Author:    author,
		Body:      body,
		CreatedAt: createdAt,
		Permalink: permalink,
	})
	f.items[permalink] = platform.Item{ID: "t1_" + id, Author: author, Permalink: permalink}
	return permalink
}

// AddReply attaches a reply by author under the intake comment at permalink
// without recording it as a bot reply.
func (f *FakePlatform) AddReply(permalink, author, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	for i, c := range f.thread.Comments {
		if c.Permalink == permalink {
			f.thread.Comments[i].Replies = append(f.thread.Comments[i].Replies,
				platform.Comment{ID: fmt.Sprintf("r%d", f.seq), Author: author, Body: body, CreatedAt: int64(f.seq)})
		}
	}
}

// CollapseReplies marks the reply list of the intake comment at permalink as
// only partly loaded and hides the replies already attached to it.
func (f *FakePlatform) CollapseReplies(permalink string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.thread.Comments {
		if c.Permalink == permalink {
			f.thread.Comments[i].Replies = nil
			f.thread.Comments[i].Incomplete = true
		}
	}
}

// SetThreadIncomplete flags the intake thread's top-level listing as partial.
func (f *FakePlatform) SetThreadIncomplete(incomplete bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thread.Incomplete = incomplete
}

// DeleteAccount marks every intake comment by author as tombstoned.
func (f *FakePlatform) DeleteAccount(author string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.thread.Comments {
		if c.Author == author {
			f.thread.Comments[i].Author = platform.Tombstone
			item := f.items[c.Permalink]
			item.Author = ""
			f.items[c.Permalink] = item
		}
	}
}

// RemovePost makes GetByID report the post with an empty author.
func (f *FakePlatform) RemovePost(postID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(postID, "t3_")
	item := f.items[key]
	item.Author = ""
	f.items[key] = item
}

// PurgePost makes GetByID report the post as not found.
func (f *FakePlatform) PurgePost(postID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, strings.TrimPrefix(postID, "t3_"))
}

// SetResolveLag hides each new post from the next n MostRecentByIdentity calls.
func (f *FakePlatform) SetResolveLag(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lagCalls = n
}

// Fail makes op return err once it has succeeded after times.
func (f *FakePlatform) Fail(op string, after int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = failure{after: after, err: err}
}

// Heal clears every injected failure.
func (f *FakePlatform) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = make(map[string]failure)
}

// Replies returns every reply posted so far.
func (f *FakePlatform) Replies() []FakeReply {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeReply(nil), f.replies...)
}

// RepliesTo returns the bodies replied under target.
func (f *FakePlatform) RepliesTo(target string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.replies {
		if r.Target == target {
			out = append(out, r.Body)
		}
	}
	return out
}

// Records returns the published posts, newest first.
func (f *FakePlatform) Records() []platform.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Record(nil), f.records...)
}

// Approved returns the approved post ids.
func (f *FakePlatform) Approved() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.approved...)
}

// Calls returns how often op was invoked.
func (f *FakePlatform) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakePlatform) enter(op string) error {
	n := f.calls[op]
	f.calls[op] = n + 1
	if fail, ok := f.failures[op]; ok && n >= fail.after {
		return fail.err
	}
	return nil
}

// Identity implements platform.Platform.
func (f *FakePlatform) Identity() string {
	return f.name
}

// ReadThread implements platform.Platform.
func (f *FakePlatform) ReadThread(_ context.Context, id string) (platform.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpReadThread); err != nil {
		return platform.Thread{}, err
	}
	if id == f.thread.ID {
		return cloneThread(f.thread), nil
	}
	key := strings.TrimPrefix(id, "t3_")
	for _, r := range f.records {
		if r.ID == key {
			return platform.Thread{ID: r.ID, Title: r.Title, Comments: cloneComments(f.postThread[key])}, nil
		}
	}
	return platform.Thread{}, services.Wrap(services.ErrNotFound, "fake", "read thread", id, nil)
}

// PostTopLevel implements platform.Platform.
func (f *FakePlatform) PostTopLevel(_ context.Context, title, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpPost); err != nil {
		return err
	}
	f.seq++
	id := fmt.Sprintf("p%d", f.seq)
	record := platform.Record{
		ID:        id,
		Title:     title,
		URL:       link,
		Author:    f.name,
		Permalink: fmt.Sprintf("https://reddit.com/r/test/comments/%s/_/", id),
		CreatedAt: int64(f.seq),
	}
	f.records = append([]platform.Record{record}, f.records...)
	f.items[id] = platform.Item{ID: "t3_" + id, Author: f.name, Permalink: record.Permalink}
	f.pendingLag = f.lagCalls
	return nil
}

// MostRecentByIdentity implements platform.Platform.
func (f *FakePlatform) MostRecentByIdentity(_ context.Context, limit int) ([]platform.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpRecent); err != nil {
		return nil, err
	}
	records := f.records
	if f.pendingLag > 0 && len(records) > 0 {
		f.pendingLag--
		records = records[1:]
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return append([]platform.Record(nil), records...), nil
}

// Reply implements platform.Platform.
func (f *FakePlatform) Reply(_ context.Context, target, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpReply); err != nil {
		return err
	}
	f.seq++
	reply := platform.Comment{ID: fmt.Sprintf("r%d", f.seq), Author: f.name, Body: body, CreatedAt: int64(f.seq)}
	f.replies = append(f.replies, FakeReply{Target: target, Body: body})
	for i, c := range f.thread.Comments {
		if c.Permalink == target || "t1_"+c.ID == target {
			f.thread.Comments[i].Replies = append(f.thread.Comments[i].Replies, reply)
			return nil
		}
	}
	key := strings.TrimPrefix(target, "t3_")
	if _, ok := f.items[key]; ok {
		f.postThread[key] = append(f.postThread[key], reply)
	}
	return nil
}

// GetByID implements platform.Platform.
func (f *FakePlatform) GetByID(_ context.Context, target string) (platform.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpGet); err != nil {
		return platform.Item{}, err
	}
	item, ok := f.items[strings.TrimPrefix(target, "t3_")]
	if !ok {
		return platform.Item{}, services.Wrap(services.ErrNotFound, "fake", "get by id", target, nil)
	}
	return item, nil
}

// Approve implements platform.Platform.
func (f *FakePlatform) Approve(_ context.Context, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpApprove); err != nil {
		return err
	}
	f.approved = append(f.approved, postID)
	return nil
}

func cloneThread(t platform.Thread) platform.Thread {
	t.Comments = cloneComments(t.Comments)
	return t
}

func cloneComments(in []platform.Comment) []platform.Comment {
	if in == nil {
		return nil
	}
	out := make([]platform.Comment, len(in))
	for i, c := range in {
		c.Replies = cloneComments(c.Replies)
		out[i] = c
	}
	return out
}
