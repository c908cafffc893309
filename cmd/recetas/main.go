package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/houzhh15/recetas/internal/config"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recetas",
		Short:         "recetas - 食谱分享服务命令行客户端",
		Long:          "选择服务器、登录，并对后端的食谱进行查询、创建、修改和删除。",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// 添加全局标志
	config.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(newServerCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRecipesCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", exitMessage(err))
		os.Exit(1)
	}
}
