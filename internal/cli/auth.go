package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcentra/console/pkg/api"
	"github.com/arcentra/console/pkg/model"
)

// readPassword はフラグが空なら標準入力から1行読み取る。
func readPassword(cmd *cobra.Command, password string) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("パスワードの読み取りに失敗: %w", err)
		}
		return "", errors.New("password is required")
	}
	return line, nil
}

// establish はログイン結果をセッションに保存して表示する。
func (a *app) establish(cmd *cobra.Command, resp *model.LoginResponse) error {
	if err := api.Establish(cmd.Context(), a.store, resp); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s", resp.UserInfo.Username)
	if resp.Role != "" {
		fmt.Fprintf(a.out, " (%s)", resp.Role)
	}
	fmt.Fprintln(a.out)
	return nil
}

func newLoginCommand(a *app) *cobra.Command {
	var username, password, ldap string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with username and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}

			var resp *model.LoginResponse
			if ldap != "" {
				resp, err = a.apis.Auth.LoginWithLDAP(cmd.Context(), ldap,
					model.LDAPLoginRequest{Username: username, Password: pw})
			} else {
				resp, err = a.apis.Auth.Login(cmd.Context(),
					model.LoginRequest{Username: username, Password: pw})
			}
			if err != nil {
				return err
			}
			return a.establish(cmd, resp)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	cmd.Flags().StringVar(&ldap, "ldap", "", "log in through the named LDAP provider")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newRegisterCommand(a *app) *cobra.Command {
	var req model.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, req.Password)
			if err != nil {
				return err
			}
			r := req
			r.Password = pw
			resp, err := a.apis.Auth.Register(cmd.Context(), r)
			if err != nil {
				return err
			}
			return a.establish(cmd, resp)
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the current token and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.store.Snapshot().LoggedIn() {
				fmt.Fprintln(a.out, "Not logged in")
				return nil
			}
			_, err := a.apis.User.Logout(cmd.Context())
			// サーバー側の失効に失敗してもローカルのセッションは破棄する
			a.store.ClearSession()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			info, err := a.apis.User.Me(cmd.Context())
			if err != nil {
				return err
			}
			st := a.store.Snapshot()
			if err := a.store.SetUser(cmd.Context(), *info, st.Role); err != nil {
				return err
			}

			tw := newTable(a.out)
			fmt.Fprintf(tw, "User ID:\t%s\n", info.UserID)
			fmt.Fprintf(tw, "Username:\t%s\n", info.Username)
			fmt.Fprintf(tw, "Name:\t%s\n", orDash(strings.TrimSpace(info.FirstName+" "+info.LastName)))
			fmt.Fprintf(tw, "Email:\t%s\n", orDash(info.Email))
			fmt.Fprintf(tw, "Role:\t%s\n", orDash(st.Role))
			fmt.Fprintf(tw, "Organization:\t%s\n", orDash(st.OrganizationID))
			return tw.Flush()
		},
	}
}

func newAuthorizeURLCommand(a *app) *cobra.Command {
	var redirectURI string
	cmd := &cobra.Command{
		Use:   "authorize-url <provider>",
		Short: "Print the URL that starts an OAuth2/OIDC login",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fmt.Fprintln(a.out, api.AuthorizeURL(a.cfg.APIURL, args[0], redirectURI))
			return nil
		},
	}
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "http://localhost:5173/login/callback", "where the provider sends the browser back")
	return cmd
}

func newCallbackCommand(a *app) *cobra.Command {
	var code, state string
	cmd := &cobra.Command{
		Use:   "callback <provider>",
		Short: "Exchange an authorization code for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.apis.Auth.HandleCallback(cmd.Context(), args[0], code, state)
			if err != nil {
				return err
			}
			return a.establish(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code from the redirect")
	cmd.Flags().StringVar(&state, "state", "", "state from the redirect")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}
