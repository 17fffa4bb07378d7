// Package hosting defines the image host used to obtain a public link for a
// generated image.
package hosting
