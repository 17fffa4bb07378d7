package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"diffusedbrush/internal/platform"
)

const checkTimeout = 5 * time.Second

// RecentLister is the slice of the platform that the reachability check needs.
type RecentLister interface {
	MostRecentByIdentity(ctx context.Context, limit int) ([]platform.Record, error)
}

// CheckPlatform verifies that the bot account can authenticate and list its posts.
func CheckPlatform(ctx context.Context, name string, lister RecentLister) Result {
	if lister == nil {
		return Result{Name: name, Detail: "not configured"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*checkTimeout)
	defer cancel()

	if _, err := lister.MostRecentByIdentity(checkCtx, 1); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Authenticated"}
}

// CheckStability verifies Stability connectivity and authentication.
func CheckStability(ctx context.Context, baseURL, apiKey string) Result {
	const name = "Stability"

	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}
	return checkEndpoint(ctx, name, baseURL, "/v1/user/account", "Authorization", "Bearer "+strings.TrimSpace(apiKey))
}

// CheckImgur verifies Imgur connectivity and the anonymous client id.
func CheckImgur(ctx context.Context, baseURL, clientID string) Result {
	const name = "Imgur"

	if strings.TrimSpace(clientID) == "" {
		return Result{Name: name, Detail: "missing client id"}
	}
	return checkEndpoint(ctx, name, baseURL, "/3/credits", "Authorization", "Client-ID "+strings.TrimSpace(clientID))
}

// CheckNtfy verifies that the ntfy topic URL is well formed and its server answers.
func CheckNtfy(ctx context.Context, topic string) Result {
	const name = "ntfy"

	parsed, err := url.Parse(strings.TrimSpace(topic))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Result{Name: name, Detail: "topic must be a full URL"}
	}
	base := parsed.Scheme + "://" + parsed.Host
	return checkEndpoint(ctx, name, base, "/v1/health", "", "")
}

func checkEndpoint(ctx context.Context, name, baseURL, path, header, value string) Result {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	client := &http.Client{Timeout: checkTimeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+path, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	if header != "" {
		req.Header.Set(header, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid credentials)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
