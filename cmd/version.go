package cmd

import (
	"fmt"

	"github.com/dontknow492/Notes/internal/app"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "version",
		Short: "Print version info and exit // 打印版本信息并退出",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := app.VersionInfo{Name: app.Name, Version: app.Version, GitTag: app.GitTag, BuildTime: app.BuildTime}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), info)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s v%s (git %s) built %s\n", info.Name, info.Version, info.GitTag, info.BuildTime)
			return err
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return c
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
