package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	errs "github.com/jrsteele09/spamscope/internal/errors"
)

const (
	// maxRequestLine bounds the redirect request line; authorization codes are long but not this long.
	maxRequestLine = 64 << 10

	// requestReadTimeout bounds how long an accepted connection may take to send its request line.
	requestReadTimeout = 30 * time.Second
)

const (
	successPage = "Login successful! You can close this window."
	failurePage = "Login failed. You can close this window and try again."
)

// redirectListener accepts exactly one connection: the browser following the
// provider's redirect back to the loopback address.
type redirectListener struct {
	ln          net.Listener
	redirectURI string
}

// listenRedirect binds addr. An empty redirectURI is derived from the bound port.
func listenRedirect(ctx context.Context, addr, redirectURI string) (*redirectListener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, errs.Join(ErrRedirect, err)
	}
	if redirectURI == "" {
		tcpAddr, ok := ln.Addr().(*net.TCPAddr)
		if !ok {
			ln.Close()
			return nil, fmt.Errorf("%w: listener is not tcp", ErrRedirect)
		}
		redirectURI = fmt.Sprintf("http://localhost:%d/", tcpAddr.Port)
	}
	return &redirectListener{ln: ln, redirectURI: redirectURI}, nil
}

func (l *redirectListener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *redirectListener) Close() error {
	return l.ln.Close()
}

// accept waits for the single redirect connection and closes the listener
// as soon as it returns, whatever the outcome. A non-zero timeout bounds the wait.
func (l *redirectListener) accept(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-waitCtx.Done():
			l.ln.Close()
		case <-done:
		}
	}()

	conn, err := l.ln.Accept()
	l.ln.Close()
	if err == nil {
		return conn, nil
	}

	switch {
	case ctx.Err() != nil:
		return nil, fmt.Errorf("waiting for redirect: %w", ctx.Err())
	case waitCtx.Err() != nil:
		return nil, ErrCallbackTimeout
	default:
		return nil, errs.Join(ErrRedirect, err)
	}
}

// readRedirectQuery reads only the request line, e.g. "GET /?code=abc&state=xyz HTTP/1.1",
// and returns its query parameters. Headers and body are never read.
func readRedirectQuery(conn net.Conn) (url.Values, error) {
	_ = conn.SetReadDeadline(time.Now().Add(requestReadTimeout))

	line, err := bufio.NewReader(io.LimitReader(conn, maxRequestLine)).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, errs.Join(ErrMalformedRedirect, err)
	}

	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.HasPrefix(fields[1], "/") {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRedirect, strings.TrimSpace(line))
	}

	u, err := url.Parse("http://localhost" + fields[1])
	if err != nil {
		return nil, errs.Join(ErrMalformedRedirect, err)
	}
	return u.Query(), nil
}

// authorizationCode checks the redirect parameters against the session.
func authorizationCode(query url.Values, session *AuthorizationSession) (string, error) {
	if e := query.Get("error"); e != "" {
		if desc := query.Get("error_description"); desc != "" {
			e += ": " + desc
		}
		return "", fmt.Errorf("%w: %s", ErrAuthorizationDenied, e)
	}
	if state := query.Get("state"); state != "" && state != session.Params.State {
		return "", ErrStateMismatch
	}
	code := query.Get("code")
	if code == "" {
		return "", ErrMissingCode
	}
	return code, nil
}

// respond writes a minimal plain text page and leaves closing the connection to the caller.
func respond(conn net.Conn, ok bool) error {
	status, body := "200 OK", successPage
	if !ok {
		status, body = "400 Bad Request", failurePage
	}
	_ = conn.SetWriteDeadline(time.Now().Add(requestReadTimeout))
	_, err := fmt.Fprintf(conn,
		"HTTP/1.1 %s\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		status, len(body), body)
	return err
}
