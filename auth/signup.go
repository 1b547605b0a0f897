package auth

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/skilldeck/skilldeck-go/platform/errors"
	"github.com/skilldeck/skilldeck-go/session"
)

// AuthorProfile is the additional profile an AUTHOR account carries.
type AuthorProfile struct {
	FullName   string `json:"fullName"`
	Contact    string `json:"contact,omitempty"`
	Website    string `json:"website,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// SignupInput describes a new account. Author must be set when Role is
// AUTHOR and is ignored otherwise.
type SignupInput struct {
	Username string
	Password string
	Role     session.Role
	Author   *AuthorProfile
}

// Signup registers a new account and returns the created user identifier.
// For AUTHOR accounts it additionally registers the author profile with the
// author-side service; when that second call fails the user already exists,
// so the error says so via the "stage" metadata.
func (g *Gateway) Signup(ctx context.Context, input SignupInput) (string, error) {
	if input.Username == "" || input.Password == "" {
		return "", errors.New(errors.CodeSignupFailed, "username and password are required")
	}
	if input.Role == session.RoleAuthor && (input.Author == nil || input.Author.FullName == "") {
		return "", errors.New(errors.CodeSignupFailed, "full name is required for authors")
	}

	payload := map[string]string{
		"username": input.Username,
		"password": input.Password,
		"role":     string(input.Role),
	}
	var raw json.RawMessage
	if err := g.api.Post(ctx, "/api/user/signup", payload, &raw); err != nil {
		return "", errors.Wrap(errors.CodeSignupFailed, "signup request failed", err)
	}

	userID := decodeUserID(raw)
	if userID == "" {
		return "", errors.New(errors.CodeSignupFailed, "signup response carries no user id")
	}

	if input.Role == session.RoleAuthor {
		if g.authorAPI == nil {
			return "", errors.WithMetadata(errors.CodeSignupFailed,
				"author service not configured", map[string]string{"stage": "author_profile", "user_id": userID})
		}
		profile := struct {
			AuthorProfile
			UserID string `json:"userId"`
		}{AuthorProfile: *input.Author, UserID: userID}
		if err := g.authorAPI.Post(ctx, "/api/author/register", profile, nil); err != nil {
			// The user account exists at this point; only the profile is missing.
			return "", &errors.Error{
				Code:     errors.CodeSignupFailed,
				Message:  "user created but author profile registration failed",
				Metadata: map[string]string{"stage": "author_profile", "user_id": userID},
				Cause:    err,
			}
		}
	}

	g.logger.Info().Str("username", input.Username).Str("role", string(input.Role)).Msg("account created")
	return userID, nil
}

// decodeUserID extracts the created-user identifier from the loosely shaped
// signup response: an object carrying id or userId, a bare string, or a bare
// number.
func decodeUserID(raw json.RawMessage) string {
	var obj struct {
		ID     json.RawMessage `json:"id"`
		UserID json.RawMessage `json:"userId"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if id := decodeScalarID(obj.ID); id != "" {
			return id
		}
		if id := decodeScalarID(obj.UserID); id != "" {
			return id
		}
	}
	return decodeScalarID(raw)
}

func decodeScalarID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return ""
}
