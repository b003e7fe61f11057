// Package ui implements the host side of the login flow: opening the system
// browser and publishing the authorization URL when no window can be opened.
package ui

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jrsteele09/spamscope/auth"
	"github.com/pkg/browser"
)

// ErrNoWindow is returned by Emitter, which never opens windows.
var ErrNoWindow = errors.New("no login window available")

// Emitter publishes authorization URLs. The last one is kept for hosts that
// poll for it, and each is written to out when out is set.
type Emitter struct {
	out io.Writer

	mu   sync.RWMutex
	last string
}

var _ auth.UI = (*Emitter)(nil)

func NewEmitter(out io.Writer) *Emitter {
	return &Emitter{out: out}
}

// OpenLoginWindow always fails so that the flow emits the URL instead.
func (e *Emitter) OpenLoginWindow(string) (auth.Window, error) {
	return nil, ErrNoWindow
}

func (e *Emitter) EmitAuthURL(authURL string) {
	e.mu.Lock()
	e.last = authURL
	e.mu.Unlock()
	if e.out != nil {
		fmt.Fprintf(e.out, "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)
	}
}

// LastAuthURL returns the most recently emitted URL.
func (e *Emitter) LastAuthURL() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last, e.last != ""
}

// Browser opens the authorization URL in the system browser and falls back
// to its Emitter.
type Browser struct {
	*Emitter
	open func(string) error
}

var _ auth.UI = (*Browser)(nil)

type BrowserOption func(*Browser)

// WithOpener replaces the call that launches the browser.
func WithOpener(open func(string) error) BrowserOption {
	return func(b *Browser) {
		b.open = open
	}
}

func NewBrowser(emitter *Emitter, opts ...BrowserOption) *Browser {
	b := &Browser{Emitter: emitter, open: browser.OpenURL}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Browser) OpenLoginWindow(authURL string) (auth.Window, error) {
	if err := b.open(authURL); err != nil {
		return nil, fmt.Errorf("opening browser: %w", err)
	}
	return browserTab{}, nil
}

// browserTab is a tab in the user's own browser, which cannot be closed from here.
type browserTab struct{}

func (browserTab) Close() error { return nil }
