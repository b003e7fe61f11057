package oauthmodel

// TokenResponse is what the login flow hands back to callers of the local API.
// Only the access token is ever issued to them; refresh tokens are not kept.
type TokenResponse struct {
	// AccessToken is used as "Authorization: Bearer <access_token>" against Graph.
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`
}

// NewBearerResponse wraps an access token for the local API.
func NewBearerResponse(accessToken string) TokenResponse {
	return TokenResponse{AccessToken: accessToken, TokenType: TokenTypeBearer}
}
