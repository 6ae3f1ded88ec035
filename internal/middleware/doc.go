// Package middleware provides HTTP middleware for the media converter API.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with path normalization
//   - Response compression (gzip) for API payloads
//   - Configurable filtering for health checks and the metrics endpoint
package middleware
