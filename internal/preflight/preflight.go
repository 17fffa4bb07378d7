package preflight

import (
	"context"
	"strings"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/httpretry"
	"diffusedbrush/internal/platform/reddit"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	if redditConfigured(cfg.Reddit) {
		client := reddit.New(reddit.ConfigFrom(cfg), reddit.WithRetryPolicy(httpretry.Policy{Attempts: 1}))
		results = append(results, CheckPlatform(ctx, "Reddit", client))
	} else {
		results = append(results, Result{Name: "Reddit", Detail: "Credentials missing"})
	}

	results = append(results,
		CheckStability(ctx, cfg.Stability.BaseURL, cfg.Stability.APIKey),
		CheckImgur(ctx, cfg.Imgur.BaseURL, cfg.Imgur.ClientID),
	)

	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckNtfy(ctx, cfg.Notifications.NtfyTopic))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

func redditConfigured(r config.Reddit) bool {
	for _, v := range []string{r.ClientID, r.ClientSecret, r.Username, r.Password} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
