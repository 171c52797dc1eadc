package common

// AuthCookieName is the cookie carrying the session token.
const AuthCookieName = "auth_token"

// AuthorizationHeaderName and BearerScheme describe the optional header
// form of the session token: "Authorization: Bearer <token>".
const (
	AuthorizationHeaderName = "Authorization"
	BearerScheme            = "Bearer"
)

// CollectionSlugSeparator joins a collection name and its owner id into
// the per-owner uniqueness key.
const CollectionSlugSeparator = ":_:"
