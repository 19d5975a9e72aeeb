// Package middleware provides HTTP middleware for the photo library server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - gzip compression of JSON responses
//
// Health checks and cache file requests can be left out of the access log.
package middleware
