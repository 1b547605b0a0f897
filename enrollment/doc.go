// Package enrollment keeps the learner's enrolled-course set consistent
// with the remote service.
//
// It centralizes the consistency rules that would otherwise leak into every
// consuming surface: records mutate locally only after server
// acknowledgement, the status index is always derivable from the record
// set, and overlapping fetches resolve in issuance order. Unenrolling is
// not part of this client; records leave the set only through a refresh.
package enrollment
