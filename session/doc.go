// Package session holds the authenticated identity for the life of the
// process.
//
// It separates the durable part of a session (the bearer token, persisted in
// the credential store) from the transient part (username and role, resolved
// from the token and held in memory only), so a resumed session is forced
// back through identity resolution before any role-gated action.
package session
