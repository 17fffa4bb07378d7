// Package imgur implements hosting.Host against the Imgur v3 anonymous
// upload API.
package imgur
