package queue

import "time"

// Submission is one accepted subject awaiting publication.
type Submission struct {
	Author     string `json:"author"`
	Subject    string `json:"subject"`
	OriginLink string `json:"origin_link"`
	CreatedAt  int64  `json:"created_at"`
}

// Created returns CreatedAt as a time in UTC.
func (s Submission) Created() time.Time {
	return time.Unix(s.CreatedAt, 0).UTC()
}

// MergeResult reports the outcome of Queue.Merge.
type MergeResult struct {
	// Added lists candidates that were not previously queued.
	Added []Submission
	// Accepted lists every candidate that is present in the queue after the
	// merge, whether newly added or already queued.
	Accepted []Submission
}

func less(a, b Submission) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.OriginLink < b.OriginLink
}
