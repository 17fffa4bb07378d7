// Package generation defines the text-to-image capability and the bounded
// retry loop used when the service rejects a prompt on content grounds.
package generation
