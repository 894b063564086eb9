package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configDefault 内置的默认配置，找不到配置文件时写出
var configDefault string

var rootCmd = &cobra.Command{
	Use:   "notes",
	Short: "Notes service and command line client",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpTemplate()
		cmd.Help()
	},
}

func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
