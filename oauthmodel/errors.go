package oauthmodel

import "errors"

var (
	ErrInvalidClientID            = errors.New("invalid or no client id")
	ErrInvalidCodeChallenge       = errors.New("invalid code challenge")
	ErrInvalidCodeChallengeMethod = errors.New("invalid code challenge method")
	ErrInvalidCodeVerifier        = errors.New("invalid code verifier")
	ErrInvalidRedirectUri         = errors.New("invalid or no redirect uri")
	ErrInvalidResponseMode        = errors.New("invalid response mode")
	ErrInvalidResponseType        = errors.New("unsupported response type")
	ErrMissingState               = errors.New("missing state")
	ErrMissingScope               = errors.New("missing scope")
	ErrMissingCode                = errors.New("missing authorization code")
)
