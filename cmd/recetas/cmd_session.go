package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/houzhh15/recetas/internal/apiclient"
	"github.com/houzhh15/recetas/internal/messages"
	"github.com/houzhh15/recetas/internal/session"
)

func newServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "服务器地址管理",
	}
	cmd.AddCommand(newServerSetCmd())
	cmd.AddCommand(newServerShowCmd())
	return cmd
}

func newServerSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set URL",
		Short: "保存服务器地址 (http:// 或 https://)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if err := a.servers.Save(args[0]); err != nil {
				return a.fail(messages.OpServer, err)
			}
			a.logger.Info("server_saved", "url", args[0])
			out := map[string]string{"serverUrl": args[0]}
			return printOutput(cmd.OutOrStdout(), a.cfg.Output, out, printLine(a.msg.Success(messages.OpServer, "")))
		},
	}
}

func newServerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "显示已保存的服务器地址",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			url, ok, err := a.servers.GetServerURL()
			if err != nil {
				return err
			}
			if !ok {
				return a.fail(messages.OpServer, apiclient.ErrUnconfigured)
			}
			return printOutput(cmd.OutOrStdout(), a.cfg.Output, map[string]string{"serverUrl": url}, printLine(url))
		},
	}
}

func newLoginCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "login",
		Short: "登录并保存令牌",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			email := mustGetString(cmd, "email")
			password := mustGetString(cmd, "password")
			res, err := a.session.Login(commandContext(cmd), email, password)
			if err != nil {
				return a.fail(messages.OpLogin, err)
			}
			return printOutput(cmd.OutOrStdout(), a.cfg.Output, res, printLine(a.msg.Success(messages.OpLogin, "")))
		},
	}
	c.Flags().String("email", "", "邮箱")
	c.Flags().String("password", "", "密码")
	return c
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "删除已保存的令牌",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if err := a.session.Logout(); err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), a.cfg.Output, map[string]bool{"loggedIn": false}, printLine(a.msg.Text(messages.KeyLoggedOut)))
		},
	}
}

type statusView struct {
	Route     session.Route `json:"route"`
	ServerURL string        `json:"serverUrl,omitempty"`
	LoggedIn  bool          `json:"loggedIn"`
	StateFile string        `json:"stateFile"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "显示当前服务器与登录状态",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			route, err := a.session.Route()
			if err != nil {
				return err
			}
			url, _, err := a.servers.GetServerURL()
			if err != nil {
				return err
			}
			_, loggedIn, err := a.session.Token()
			if err != nil {
				return err
			}
			view := statusView{Route: route, ServerURL: url, LoggedIn: loggedIn, StateFile: a.state.Path()}
			return printOutput(cmd.OutOrStdout(), a.cfg.Output, view, func(w io.Writer) {
				fmt.Fprintf(w, "route:     %s\n", view.Route)
				fmt.Fprintf(w, "server:    %s\n", view.ServerURL)
				fmt.Fprintf(w, "logged in: %t\n", view.LoggedIn)
				fmt.Fprintf(w, "state:     %s\n", view.StateFile)
			})
		},
	}
}

// mustGetString 获取字符串标志
func mustGetString(cmd *cobra.Command, flag string) string {
	v, _ := cmd.Flags().GetString(flag)
	return v
}
