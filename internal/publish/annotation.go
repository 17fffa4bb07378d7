package publish

import (
	"fmt"
	"strconv"
	"strings"

	"diffusedbrush/internal/generation"
	"diffusedbrush/internal/queue"
)

// Annotation renders the informational reply attached to a new record.
func Annotation(sub queue.Submission, keywords []string, params generation.Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Author:** u/%s\n\n", sub.Author)
	fmt.Fprintf(&b, "**Original Submission:** %s\n\n", sub.OriginLink)
	if len(keywords) > 0 {
		fmt.Fprintf(&b, "**Keywords:** %s\n\n", strings.Join(keywords, ", "))
	}
	b.WriteString("**Stable Diffusion Engine Settings:**\n\n")
	fmt.Fprintf(&b, "* Engine: %s\n", params.Engine)
	fmt.Fprintf(&b, "* Steps: %d\n", params.Steps)
	fmt.Fprintf(&b, "* CFG Scale: %s\n", strconv.FormatFloat(params.CFGScale, 'f', -1, 64))
	fmt.Fprintf(&b, "* Width: %d\n", params.Width)
	fmt.Fprintf(&b, "* Height: %d\n", params.Height)
	return b.String()
}

// completionReply is the reply left under the origin comment.
func completionReply(marker, postLink string) string {
	return marker + postLink
}
