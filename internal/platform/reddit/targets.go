package reddit

import (
	"fmt"
	"net/url"
	"strings"
)

// fullname converts a target into a Reddit fullname. Accepted forms are
// fullnames (t1_x, t3_x), bare post ids, short links (https://redd.it/x), and
// permalinks (…/comments/<post>/<slug>/<comment>/).
func fullname(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("empty target")
	}
	if strings.HasPrefix(target, kindComment+"_") || strings.HasPrefix(target, kindLink+"_") {
		return target, nil
	}
	if !strings.Contains(target, "/") {
		return kindLink + "_" + target, nil
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse target %q: %w", target, err)
	}
	segments := splitPath(parsed.Path)
	if strings.EqualFold(parsed.Hostname(), "redd.it") && len(segments) > 0 {
		return kindLink + "_" + segments[0], nil
	}
	for i, segment := range segments {
		if segment != "comments" || i+1 >= len(segments) {
			continue
		}
		if i+3 < len(segments) {
			return kindComment + "_" + segments[i+3], nil
		}
		return kindLink + "_" + segments[i+1], nil
	}
	return "", fmt.Errorf("unrecognized target %q", target)
}

// postID returns the bare id of a post target.
func postID(target string) (string, error) {
	name, err := fullname(target)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(name, kindLink+"_") {
		return "", fmt.Errorf("target %q is not a post", target)
	}
	return strings.TrimPrefix(name, kindLink+"_"), nil
}

func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))
	for _, segment := range raw {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
