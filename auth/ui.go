package auth

// Window is a login window opened by the host.
type Window interface {
	Close() error
}

// UI is the host side of the login flow. OpenLoginWindow is tried first;
// when it fails the flow falls back to EmitAuthURL so the user can open the
// URL by hand. Either way the flow goes on to wait for the redirect.
type UI interface {
	OpenLoginWindow(authURL string) (Window, error)
	EmitAuthURL(authURL string)
}
