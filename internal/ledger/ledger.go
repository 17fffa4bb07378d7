package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"diffusedbrush/internal/docstore"
	"diffusedbrush/internal/queue"
	"diffusedbrush/internal/services"
)

const component = "ledger"

// Entry is the record of one published image.
type Entry struct {
	Author       string `json:"author"`
	Subject      string `json:"subject"`
	OriginLink   string `json:"origin_link"`
	ArtifactLink string `json:"artifact_link"`
	PostID       string `json:"post_id"`
	CreatedAt    int64  `json:"created_at"`
}

// NewEntry builds the ledger record for a published submission.
func NewEntry(sub queue.Submission, artifactLink, postID string) Entry {
	return Entry{
		Author:       sub.Author,
		Subject:      sub.Subject,
		OriginLink:   sub.OriginLink,
		ArtifactLink: artifactLink,
		PostID:       postID,
		CreatedAt:    sub.CreatedAt,
	}
}

// Ledger is the durable list of published records.
type Ledger struct {
	doc docstore.Document
}

// New returns a ledger persisted in doc.
func New(doc docstore.Document) *Ledger {
	return &Ledger{doc: doc}
}

// Location describes where the ledger is stored.
func (l *Ledger) Location() string {
	return l.doc.Location()
}

// List returns every entry in append order.
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	return l.load(ctx)
}

// Has reports whether an entry with postID exists.
func (l *Ledger) Has(ctx context.Context, postID string) (bool, error) {
	entries, err := l.load(ctx)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

// Append adds entry unless its post id is already recorded. It reports
// whether the ledger changed.
func (l *Ledger) Append(ctx context.Context, entry Entry) (bool, error) {
	entry.PostID = strings.TrimSpace(entry.PostID)
	if entry.PostID == "" {
		return false, services.Wrap(services.ErrValidation, component, "append", "Entry has no post id", nil)
	}
	entries, err := l.load(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range entries {
		if existing.PostID == entry.PostID {
			return false, nil
		}
	}
	if err := l.save(ctx, append(entries, entry)); err != nil {
		return false, err
	}
	return true, nil
}

// RemovePostIDs deletes every entry whose post id is listed, in a single
// atomic rewrite, and returns the removed entries.
func (l *Ledger) RemovePostIDs(ctx context.Context, postIDs []string) ([]Entry, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	drop := make(map[string]struct{}, len(postIDs))
	for _, id := range postIDs {
		drop[id] = struct{}{}
	}
	entries, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	kept := make([]Entry, 0, len(entries))
	var removed []Entry
	for _, entry := range entries {
		if _, ok := drop[entry.PostID]; ok {
			removed = append(removed, entry)
			continue
		}
		kept = append(kept, entry)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := l.save(ctx, kept); err != nil {
		return nil, err
	}
	return removed, nil
}

func (l *Ledger) load(ctx context.Context) ([]Entry, error) {
	data, err := l.doc.Load(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "load", "Failed to read ledger document", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, services.Wrap(services.ErrInvariant, component, "load",
			fmt.Sprintf("Ledger document %s is not a JSON array of entries", l.doc.Location()), err)
	}
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry.PostID]; dup {
			return nil, services.Wrap(services.ErrInvariant, component, "load",
				fmt.Sprintf("Ledger document %s repeats post_id %q", l.doc.Location(), entry.PostID), nil)
		}
		seen[entry.PostID] = struct{}{}
	}
	return entries, nil
}

func (l *Ledger) save(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrInvariant, component, "save", "Failed to encode ledger", err)
	}
	if err := l.doc.Replace(ctx, data); err != nil {
		return services.Wrap(services.ErrTransient, component, "save", "Failed to persist ledger document", err)
	}
	return nil
}
