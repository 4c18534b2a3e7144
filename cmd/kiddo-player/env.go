package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/kiddolearn/kiddo-player/internal/config"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are currently set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are currently unset")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

var (
	envNameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9D8EFF"))
	envSetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#73F59F"))
	envUnsetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	envDescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// envCmd lists every supported environment variable with its current value
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		for _, env := range config.SupportedEnvVars() {
			value, present := os.LookupEnv(env.Name)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Print(envNameStyle.Render(env.Name), "=")
			if present {
				cmd.Println(envSetStyle.Render(value))
			} else {
				cmd.Println(envUnsetStyle.Render("unset"))
			}
			cmd.Println("  " + envDescStyle.Render(env.Description))
		}
	},
}
