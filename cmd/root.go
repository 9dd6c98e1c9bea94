package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var (
	Version   = "dev"
	BuildTime = ""
	GitCommit = ""
)

var rootCmd = &cobra.Command{
	Use:     "viberx",
	Short:   "viberx - Spotify playlist dashboard backend",
	Long:    `A single-binary backend for the viberx dashboard, providing Spotify OAuth login, cookie sessions and an authenticated Spotify API proxy.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate("viberx version {{.Version}}\n")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
