// Package reddit implements platform.Platform over the Reddit OAuth API using
// a script-app password grant.
//
// Requests are paced by a client-side token bucket sized from
// reddit.requests_per_minute, retried through httpretry, and authenticated
// with a cached bearer token that is refreshed on expiry or on a 401.
package reddit
