package auth

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/skilldeck/skilldeck-go/api"
	"github.com/skilldeck/skilldeck-go/platform/errors"
	"github.com/skilldeck/skilldeck-go/session"
)

// Gateway exchanges credentials for a session against the remote service.
type Gateway struct {
	api       *api.Client
	authorAPI *api.Client
	sessions  *session.Store
	logger    zerolog.Logger
}

// NewGateway creates an auth gateway. authorAPI targets the author-side
// service and may be nil when author signup is not needed.
func NewGateway(client *api.Client, authorAPI *api.Client, sessions *session.Store, logger zerolog.Logger) *Gateway {
	return &Gateway{
		api:       client,
		authorAPI: authorAPI,
		sessions:  sessions,
		logger:    logger,
	}
}

// Authenticate exchanges a username/password pair for a bearer token,
// resolves the identity behind the token, and installs the resulting session
// in the session store. On any failure the session store is left unchanged.
func (g *Gateway) Authenticate(ctx context.Context, username, password string) (session.Session, error) {
	if username == "" || password == "" {
		return session.Session{}, errors.New(errors.CodeInvalidCredentials, "username and password are required")
	}

	var tokenResp struct {
		Token string `json:"token"`
	}
	if err := g.api.GetWithBasic(ctx, "/api/user/token", username, password, &tokenResp); err != nil {
		return session.Session{}, classifyTokenError(err)
	}
	if tokenResp.Token == "" {
		return session.Session{}, errors.New(errors.CodeMalformedResponse, "token endpoint returned no token")
	}

	role, err := g.ResolveRole(ctx, tokenResp.Token)
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{Token: tokenResp.Token, Username: username, Role: role}
	if err := g.sessions.Set(ctx, sess); err != nil {
		return session.Session{}, errors.Wrap(errors.CodeUnknown, "store session", err)
	}

	g.logger.Info().Str("username", username).Str("role", string(role)).Msg("authenticated")
	return sess, nil
}

// ResolveRole resolves the role behind a bearer token.
//
// The details endpoint is loosely specified: some deployments return the
// role nested under a user object, others return it flat. Both shapes must
// stay accepted.
func (g *Gateway) ResolveRole(ctx context.Context, token string) (session.Role, error) {
	var details struct {
		User *struct {
			Role string `json:"role"`
		} `json:"user"`
		Role string `json:"role"`
	}
	if err := g.api.GetWithBearer(ctx, "/api/user/details", token, &details); err != nil {
		return "", classifyTokenError(err)
	}

	raw := details.Role
	if details.User != nil && details.User.Role != "" {
		raw = details.User.Role
	}
	if raw == "" {
		return "", errors.New(errors.CodeRoleNotFound, "details response carries no role")
	}

	role, ok := session.ParseRole(raw)
	if !ok {
		return "", errors.WithMetadata(errors.CodeUnknownRole, "unrecognized role", map[string]string{"role": raw})
	}
	return role, nil
}

// Logout clears the session and its durable token.
func (g *Gateway) Logout(ctx context.Context) error {
	return g.sessions.Clear(ctx)
}

// classifyTokenError maps transport failures during the auth exchange onto
// the auth error taxonomy.
func classifyTokenError(err error) error {
	var statusErr *api.StatusError
	if stderrors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Wrap(errors.CodeInvalidCredentials, "credentials rejected", err)
		}
		return errors.Wrap(errors.CodeMalformedResponse, "unexpected auth response", err)
	}
	var decodeErr *api.DecodeError
	if stderrors.As(err, &decodeErr) {
		return errors.Wrap(errors.CodeMalformedResponse, "undecodable auth response", err)
	}
	return errors.Wrap(errors.CodeNetworkUnavailable, "auth service unreachable", err)
}
