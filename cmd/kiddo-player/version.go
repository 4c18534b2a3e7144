package main

import (
	"runtime"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/kiddolearn/kiddo-player/internal/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "Only print the version")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(version.GetVersion())
			return
		}
		cmd.Println(version.GetVersionInfo())
		cmd.Printf("%s/%s %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}
