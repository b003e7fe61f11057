package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jrsteele09/spamscope/internal/credential"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/jrsteele09/spamscope/mailbox"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type imapOptions struct {
	email          string
	server         string
	port           int
	password       string
	passwordPrompt bool
	remember       bool
}

// secretStore is the part of the keyring the IMAP commands use.
type secretStore interface {
	Get(server, email string) (string, error)
	Set(server, email, password string) error
}

func newIMAPCmd(o *rootOptions) *cobra.Command {
	opts := &imapOptions{}
	cmd := &cobra.Command{
		Use:   "imap",
		Short: "Read the junk folder over IMAP with a password",
	}
	cmd.PersistentFlags().StringVar(&opts.email, "email", "", "Mailbox user name")
	cmd.PersistentFlags().StringVar(&opts.server, "server", "", "IMAP server host")
	cmd.PersistentFlags().IntVar(&opts.port, "port", mailbox.DefaultPort, "IMAP server port (implicit TLS)")
	cmd.PersistentFlags().StringVar(&opts.password, "password", "", "Password; read from the keyring when omitted")
	cmd.PersistentFlags().BoolVar(&opts.passwordPrompt, "password-prompt", false, "Prompt for the password (no echo)")
	cmd.PersistentFlags().BoolVar(&opts.remember, "remember", false, "Save the password in the system keyring after a successful login")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "check",
			Short: "Verify that the credentials can log in",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runIMAP(cmd, o, opts, func(a *app, creds mailbox.Credentials) (any, error) {
					msg, err := a.commands.CheckIMAPLogin(cmd.Context(), creds)
					return map[string]string{"message": msg}, err
				})
			},
		},
		&cobra.Command{
			Use:   "senders",
			Short: "List the sender address of every junk message",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runIMAP(cmd, o, opts, func(a *app, creds mailbox.Credentials) (any, error) {
					return a.commands.GetIMAPJunkSenders(cmd.Context(), creds)
				})
			},
		},
		&cobra.Command{
			Use:   "junk",
			Short: "List junk messages with their SPF and DKIM domains",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runIMAP(cmd, o, opts, func(a *app, creds mailbox.Credentials) (any, error) {
					return a.commands.GetIMAPJunkEmails(cmd.Context(), creds)
				})
			},
		},
	)
	return cmd
}

func runIMAP(cmd *cobra.Command, o *rootOptions, opts *imapOptions, op func(*app, mailbox.Credentials) (any, error)) error {
	a, err := newApp(cmd, o, appOptions{})
	if err != nil {
		return err
	}

	var store secretStore
	if s, err := credential.Open(); err == nil {
		store = s
	} else {
		a.logger.Debug().Err(err).Msg("keyring unavailable")
	}

	password, fromKeyring, err := resolvePassword(opts, store, promptPassword)
	if err != nil {
		return err
	}
	creds := mailbox.Credentials{
		Email:    opts.email,
		Password: password,
		Server:   opts.server,
		Port:     opts.port,
	}

	result, err := op(a, creds)
	if err != nil {
		return err
	}
	if opts.remember && !fromKeyring && store != nil {
		if err := store.Set(opts.server, opts.email, password); err != nil {
			a.logger.Warn().Err(err).Msg("could not save password")
		}
	}
	return printJSON(cmd, result)
}

// resolvePassword takes the password from the flag, then the prompt, then the keyring.
func resolvePassword(opts *imapOptions, store secretStore, prompt func() (string, error)) (string, bool, error) {
	if opts.password != "" {
		return opts.password, false, nil
	}
	if opts.passwordPrompt {
		p, err := prompt()
		return p, false, err
	}
	if store == nil {
		return "", false, fmt.Errorf("%w: --password or --password-prompt is required", errs.ErrInvalidArgument)
	}
	p, err := store.Get(opts.server, opts.email)
	if errors.Is(err, credential.ErrNotStored) {
		return "", false, fmt.Errorf("%w: no saved password for %s, use --password-prompt --remember", errs.ErrInvalidArgument, opts.email)
	}
	if err != nil {
		return "", false, err
	}
	return p, true, nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "IMAP password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
