// Package timeouts defines shared timeout constants used across client
// components. Centralizing these values prevents drift between the two
// API transports and makes the durations discoverable.
package timeouts

import "time"

// Request caps the total time allowed for a single remote service call,
// including connection setup and body read.
const Request = 10 * time.Second

// TokenStore limits how long the sqlite credential store may block on a
// busy database before giving up.
const TokenStore = 5 * time.Second
