package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusCommandReportsChecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	extra := "\n[stability]\napi_key = \"sk-test\"\nbase_url = \"" + server.URL + "\"\n" +
		"\n[imgur]\nclient_id = \"imgur-test\"\nbase_url = \"" + server.URL + "\"\n"
	env := setupCLITestEnv(t, extra)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err == nil {
		t.Fatal("expected status to fail without reddit credentials")
	}
	requireContains(t, out, "System Checks")
	requireContains(t, out, "Data directory: ")
	requireContains(t, out, "Stability: Reachable")
	requireContains(t, out, "Imgur: Reachable")
	requireContains(t, out, "Reddit: Credentials missing")
}
