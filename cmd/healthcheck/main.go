// Package main provides the container health probe. It exits 0 when the
// local server is ready to answer chat traffic and 1 otherwise, so it can
// back a Docker HEALTHCHECK or orchestrator probe without shelling out to
// curl.
//
// Readiness rather than bare liveness is probed on purpose: /ready also
// covers the catalog snapshot database, and a server that cannot open its
// snapshot store should be restarted, not merely reported alive.
package main

import (
	"net/http"
	"os"
	"time"
)

const probeTimeout = 8 * time.Second

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5001"
	}

	client := &http.Client{Timeout: probeTimeout}
	resp, err := client.Get("http://localhost:" + port + "/ready")
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
