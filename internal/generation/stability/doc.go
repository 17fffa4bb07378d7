// Package stability implements generation.Generator against the Stability
// AI REST v1 text-to-image endpoint.
package stability
