// Package api is the HTTP transport shared by every component that talks to
// the remote course-management service.
//
// It centralizes bearer-token injection, request IDs, tracing, and the
// classification of failures into status, decode, and transport errors, so
// the components above it only translate those classes into their own error
// taxonomy.
package api
