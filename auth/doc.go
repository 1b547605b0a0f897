// Package auth establishes authenticated sessions against the remote
// service.
//
// It isolates the two-step credential exchange (basic credential for a
// bearer token, then identity resolution from that token) from the rest of
// the client so the session store is only ever written on a fully resolved,
// role-validated identity.
package auth
