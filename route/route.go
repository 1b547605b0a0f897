// Package route maps a resolved role onto its entry surface.
package route

import (
	"github.com/skilldeck/skilldeck-go/platform/errors"
	"github.com/skilldeck/skilldeck-go/session"
)

// Route is the path of a role's entry surface.
type Route string

const (
	EntryLearner   Route = "/learner"
	EntryAuthor    Route = "/author"
	EntryExecutive Route = "/executive"
)

// ResolveEntryPoint returns the entry surface for a role. An unrecognized
// role is terminal for the login flow: the caller surfaces the error and
// does not retry.
func ResolveEntryPoint(role session.Role) (Route, error) {
	switch role {
	case session.RoleLearner:
		return EntryLearner, nil
	case session.RoleAuthor:
		return EntryAuthor, nil
	case session.RoleExecutive:
		return EntryExecutive, nil
	}
	return "", errors.WithMetadata(errors.CodeUnknownRole, "no entry surface for role", map[string]string{"role": string(role)})
}
