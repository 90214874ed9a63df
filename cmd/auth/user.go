package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AlibekovAA/authd/internal/common/bootstrap"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func NewUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserAddCmd(opts))
	return cmd
}

func newUserAddCmd(opts *rootOptions) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an account from the command line",
		Long: `Register an account directly in the configured store. The password is
prompted for without echo, or read from the first line of stdin with
--password-stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}

			password, err := obtainPassword(cmd, passwordStdin)
			if err != nil {
				return oops.Code("PASSWORD_READ_FAILED").Wrap(err)
			}

			log, err := bootstrap.NewLogger(cfg)
			if err != nil {
				return oops.Code("LOGGER_INIT_FAILED").Wrap(err)
			}
			defer log.Close()

			app, err := bootstrap.NewAuthApp(cmd.Context(), cfg, log)
			if err != nil {
				return oops.Code("APP_INIT_FAILED").Wrap(err)
			}
			defer app.Close()

			id, err := app.Credentials.Register(cmd.Context(), username, password)
			if err != nil {
				return oops.Code("USER_ADD_FAILED").With("username", username).Wrap(err)
			}

			cmd.Printf("created account %s (%s)\n", username, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func obtainPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	w := cmd.ErrOrStderr()
	fmt.Fprint(w, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
