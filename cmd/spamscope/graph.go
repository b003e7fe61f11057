package main

import (
	"fmt"

	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/jrsteele09/spamscope/token"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLoginCmd(o *rootOptions) *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with Microsoft and print the access token",
		Long: "Sign in with Microsoft and print the access token on stdout, so it can be\n" +
			"captured with TOKEN=$(spamscope login) and passed to the other commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, o, appOptions{noBrowser: noBrowser})
			if err != nil {
				return err
			}
			accessToken, err := a.commands.Login(cmd.Context(), a.config.GetClientID())
			if err != nil {
				return err
			}
			a.logger.Info().Object("token", token.Describe(accessToken)).Msg("signed in")
			fmt.Fprintln(cmd.OutOrStdout(), accessToken)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the sign in URL instead of opening a browser")
	return cmd
}

func newMeCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the signed in user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			accessToken, err := accessTokenFlag(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, o, appOptions{})
			if err != nil {
				return err
			}
			profile, err := a.commands.GetUserInfo(cmd.Context(), accessToken)
			if err != nil {
				return err
			}
			return printJSON(cmd, profile)
		},
	}
	addTokenFlag(cmd)
	return cmd
}

func newSpamCmd(o *rootOptions) *cobra.Command {
	var (
		limit  int
		report bool
	)
	cmd := &cobra.Command{
		Use:   "spam",
		Short: "List junk folder messages with their SPF and DKIM domains",
		RunE: func(cmd *cobra.Command, args []string) error {
			accessToken, err := accessTokenFlag(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, o, appOptions{})
			if err != nil {
				return err
			}
			if report {
				r, err := a.commands.GetDomainReport(cmd.Context(), accessToken, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd, r)
			}
			emails, err := a.commands.GetSpamDomains(cmd.Context(), accessToken, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, emails)
		},
	}
	addTokenFlag(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of messages; 0 uses the configured page size")
	cmd.Flags().BoolVar(&report, "report", false, "Group messages by origin domain and add statistics")
	return cmd
}

func addTokenFlag(cmd *cobra.Command) {
	cmd.Flags().String("token", "", "Access token from 'spamscope login' (or SPAMSCOPE_TOKEN)")
}

// accessTokenFlag reads --token, falling back to SPAMSCOPE_TOKEN.
func accessTokenFlag(cmd *cobra.Command) (string, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	if err := v.BindEnv("token"); err != nil {
		return "", err
	}
	if err := v.BindPFlag("token", cmd.Flag("token")); err != nil {
		return "", err
	}
	accessToken := v.GetString("token")
	if accessToken == "" {
		return "", fmt.Errorf("%w: --token or SPAMSCOPE_TOKEN is required", errs.ErrInvalidArgument)
	}
	return accessToken, nil
}

const envPrefix = "SPAMSCOPE"
