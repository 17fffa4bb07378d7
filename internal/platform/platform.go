package platform

import (
	"context"
	"strings"
)

// Tombstone is the author name the platform reports for deleted accounts.
const Tombstone = "[deleted]"

// Comment is one node of a thread's comment tree.
type Comment struct {
	ID        string
	Author    string
	Body      string
	CreatedAt int64
	Permalink string
	Replies   []Comment
	// Incomplete is set when some direct replies could not be loaded, so
	// the absence of a reply proves nothing.
	Incomplete bool
}

// Thread is a post together with its top-level comments.
type Thread struct {
	ID       string
	Title    string
	Comments []Comment
	// Incomplete is set when some top-level comments could not be loaded.
	Incomplete bool
}

// Record is a top-level post.
type Record struct {
	ID        string
	Title     string
	URL       string
	Author    string
	Permalink string
	CreatedAt int64
}

// Item is the result of GetByID: a post or a comment reduced to the fields
// the bot inspects. An empty Author means the identity is gone.
type Item struct {
	ID        string
	Author    string
	Permalink string
}

// Platform is the discussion site the bot reads from and publishes to.
// Errors for missing records wrap services.ErrNotFound; other failures wrap
// services.ErrTransient.
type Platform interface {
	// Identity is the account name the bot acts as.
	Identity() string
	// ReadThread returns the post identified by id with its comment tree.
	ReadThread(ctx context.Context, id string) (Thread, error)
	// PostTopLevel submits a link post. The platform does not return the new
	// record id; callers resolve it with MostRecentByIdentity.
	PostTopLevel(ctx context.Context, title, link string) error
	// MostRecentByIdentity lists the bot's newest posts, newest first.
	MostRecentByIdentity(ctx context.Context, limit int) ([]Record, error)
	// Reply comments under target, which may be a post id, a fullname, or a permalink.
	Reply(ctx context.Context, target, body string) error
	// GetByID looks up a post or comment.
	GetByID(ctx context.Context, target string) (Item, error)
	// Approve applies the moderator approval to one of the bot's posts.
	Approve(ctx context.Context, postID string) error
}

// PostLink returns the short link for a post id.
func PostLink(postID string) string {
	return "https://redd.it/" + strings.TrimPrefix(postID, "t3_")
}

// IsGone reports whether author denotes a vanished identity.
func IsGone(author string) bool {
	author = strings.TrimSpace(author)
	return author == "" || author == Tombstone
}

// SameIdentity compares account names case-insensitively.
func SameIdentity(a, b string) bool {
	a = strings.TrimPrefix(strings.TrimSpace(a), "u/")
	b = strings.TrimPrefix(strings.TrimSpace(b), "u/")
	return a != "" && strings.EqualFold(a, b)
}
