// Package httpretry runs an HTTP exchange with a bounded number of attempts
// and exponential backoff. Only timeouts, 408, 429, and 5xx responses are
// retried; everything else fails on the first attempt.
package httpretry
