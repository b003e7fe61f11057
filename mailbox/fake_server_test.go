package mailbox_test

import (
	"bufio"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	testUser     = "jane@example.com"
	testPassword = "s3cret"
)

// fakeMessage is one message in a fake folder.
type fakeMessage struct {
	envelope    string
	authResults string
}

// fakeIMAP is a scripted IMAP4rev1 server over TLS, answering just the
// commands the mailbox client sends.
type fakeIMAP struct {
	ln         net.Listener
	caps       string
	folders    map[string][]fakeMessage
	fetchFails bool

	mu       sync.Mutex
	commands []string
}

func newFakeIMAP(t *testing.T, caps string, folders map[string][]fakeMessage, opts ...func(*fakeIMAP)) (*fakeIMAP, *tls.Config) {
	t.Helper()

	// borrow the httptest certificate, valid for 127.0.0.1
	hs := httptest.NewTLSServer(http.NotFoundHandler())
	t.Cleanup(hs.Close)

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: hs.TLS.Certificates})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	f := &fakeIMAP{ln: ln, caps: caps, folders: folders}
	for _, opt := range opts {
		opt(f)
	}
	go f.serve()

	pool := x509.NewCertPool()
	pool.AddCert(hs.Certificate())
	return f, &tls.Config{RootCAs: pool}
}

func (f *fakeIMAP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeIMAP) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func (f *fakeIMAP) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeIMAP) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	reply := func(format string, args ...any) {
		fmt.Fprintf(w, format+"\r\n", args...)
	}

	reply("* OK fake IMAP ready")
	w.Flush()

	var selected []fakeMessage
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.SplitN(strings.TrimRight(line, "\r\n"), " ", 3)
		if len(parts) < 2 {
			return
		}
		tag, cmd, args := parts[0], strings.ToUpper(parts[1]), ""
		if len(parts) == 3 {
			args = parts[2]
		}

		f.mu.Lock()
		f.commands = append(f.commands, cmd)
		f.mu.Unlock()

		switch cmd {
		case "CAPABILITY":
			reply("* CAPABILITY %s", f.caps)
			reply("%s OK CAPABILITY completed", tag)
		case "LOGIN":
			if strings.Contains(args, testUser) && strings.Contains(args, testPassword) {
				reply("%s OK LOGIN completed", tag)
			} else {
				reply("%s NO [AUTHENTICATIONFAILED] Invalid credentials", tag)
			}
		case "SELECT", "EXAMINE":
			msgs, ok := f.folders[strings.Trim(args, `"`)]
			if !ok {
				reply("%s NO [NONEXISTENT] Unknown mailbox", tag)
				break
			}
			selected = msgs
			reply("* %d EXISTS", len(msgs))
			reply("* FLAGS (\\Seen \\Flagged)")
			reply("%s OK [READ-ONLY] %s completed", tag, cmd)
		case "FETCH":
			if f.fetchFails {
				reply("%s NO fetch not permitted", tag)
				break
			}
			section := peekSection(args)
			for i, m := range selected {
				item := "ENVELOPE " + m.envelope
				if section != "" {
					body := ""
					if m.authResults != "" {
						body = "Authentication-Results: " + m.authResults + "\r\n"
					}
					body += "\r\n"
					item += " BODY[" + section + "] {" + strconv.Itoa(len(body)) + "}\r\n" + body
				}
				reply("* %d FETCH (%s)", i+1, item)
			}
			reply("%s OK FETCH completed", tag)
		case "LOGOUT":
			reply("* BYE logging out")
			reply("%s OK LOGOUT completed", tag)
			w.Flush()
			return
		default:
			reply("%s OK %s completed", tag, cmd)
		}
		w.Flush()
	}
}

// peekSection returns the section of a BODY.PEEK[...] fetch item, or "".
func peekSection(args string) string {
	const item = "BODY.PEEK["
	i := strings.Index(args, item)
	if i < 0 {
		return ""
	}
	rest := args[i+len(item):]
	j := strings.Index(rest, "]")
	if j < 0 {
		return ""
	}
	return rest[:j]
}

func nstring(s string) string {
	if s == "" {
		return "NIL"
	}
	return strconv.Quote(s)
}

// envelope renders an ENVELOPE with a single From address.
func envelope(subject, name, mailbox, host string) string {
	return fmt.Sprintf(`("Mon, 02 Jan 2006 15:04:05 +0000" %s ((%s NIL %s %s)) NIL NIL NIL NIL NIL NIL NIL)`,
		nstring(subject), nstring(name), nstring(mailbox), nstring(host))
}

// envelopeNoFrom renders an ENVELOPE without any From address.
func envelopeNoFrom(subject string) string {
	return fmt.Sprintf(`("Mon, 02 Jan 2006 15:04:05 +0000" %s NIL NIL NIL NIL NIL NIL NIL NIL)`, nstring(subject))
}
