// Package config provides centralized timeout constants for the application.
//
// These values are tuned for a synchronous chat endpoint: the frontend waits
// on /predict with a 10s client-side timeout, so every outbound call in the
// request path must complete well inside that budget.
package config

import "time"

// Request-path timeouts
const (
	// PredictProcessing is the end-to-end budget for one /predict request.
	// Catalog fetch (with fallback chain) plus model inference must fit here.
	PredictProcessing = 8 * time.Second

	// CatalogRequest is the timeout for a single attempt against one catalog
	// endpoint. Kept short so the fallback chain stays inside the budget:
	// two endpoints with retries must finish before the client gives up.
	CatalogRequest = 5 * time.Second

	// CatalogRetryInitial is the initial delay before retrying a failed
	// catalog request. Uses exponential backoff: 200ms -> 400ms -> 800ms.
	CatalogRetryInitial = 200 * time.Millisecond

	// ModelInference is the timeout for one classifier inference call.
	// The model service is local, so this only guards against a hung process.
	ModelInference = 3 * time.Second
)

// HTTP server timeouts
const (
	// ServerHTTPRead is the HTTP server read timeout. Chat payloads are small.
	ServerHTTPRead = 10 * time.Second

	// ServerHTTPWrite accommodates PredictProcessing plus serialization.
	ServerHTTPWrite = 15 * time.Second

	// ServerHTTPIdle is the idle timeout for keep-alive connections.
	ServerHTTPIdle = 120 * time.Second
)
