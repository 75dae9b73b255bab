package common

const (
	// AuthorizationHeaderName is the HTTP header carrying request credentials.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only credential scheme the token authenticator accepts.
	BearerScheme = "Bearer"

	// DefaultDevUserEmail identifies the fallback user provisioned in debug mode.
	DefaultDevUserEmail = "dev@localhost"
)
