package oauthmodel

// ResponseType is the OAuth2 response_type requested at the authorize endpoint.
type ResponseType string

const (
	// CodeResponseType asks for an authorization code
	CodeResponseType ResponseType = "code"
)

// ResponseModeType controls how the provider returns parameters to the redirect URI.
type ResponseModeType string

const (
	// QueryResponseMode returns parameters in the redirect query string. The
	// loopback listener only reads the request line, so this is the only mode it can capture.
	QueryResponseMode ResponseModeType = "query"

	FragmentResponseMode ResponseModeType = "fragment"
	FormPostResponseMode ResponseModeType = "form_post"
)

// CodeMethodType is the PKCE code_challenge_method.
type CodeMethodType string

const (
	CodeMethodTypeS256 CodeMethodType = "S256"
	CodeMethodTypeNone CodeMethodType = "plain"
)

// GrantType is the grant_type sent to the token endpoint.
type GrantType string

const (
	AuthorizationCodeGrant GrantType = "authorization_code"
	RefreshTokenGrant      GrantType = "refresh_token"
)

// TokenTypeBearer is the token type handed to callers of the login flow.
const TokenTypeBearer = "Bearer"
