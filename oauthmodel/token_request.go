package oauthmodel

// TokenRequest holds the form fields of an authorization_code exchange.
// There is no client secret: the client is public and proves possession of
// the authorization request through CodeVerifier.
type TokenRequest struct {
	ClientID     string
	Code         string
	RedirectURI  string
	CodeVerifier string
}

// Validate checks the request before it is posted to the token endpoint.
func (r TokenRequest) Validate() error {
	if r.ClientID == "" {
		return ErrInvalidClientID
	}
	if r.Code == "" {
		return ErrMissingCode
	}
	if r.RedirectURI == "" {
		return ErrInvalidRedirectUri
	}
	if len(r.CodeVerifier) < minPKCELength || len(r.CodeVerifier) > maxPKCELength {
		return ErrInvalidCodeVerifier
	}
	return nil
}
