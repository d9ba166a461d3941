// Package lenshubcmder
package lenshubcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/lenshub/lenshub/cmd/lenshub/config"
	servecmder "github.com/lenshub/lenshub/cmd/lenshub/serve"
	versioncmder "github.com/lenshub/lenshub/cmd/version"
)

const lenshubLongDesc string = `LensHub is a component marketplace for smart glasses.

Run services using:
  lenshub serve        Run the marketplace API server

Manage configuration using:
  lenshub config       Get, set, and list configuration values`

const lenshubShortDesc string = "LensHub - Smart Glasses Component Marketplace"

func NewLensHubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lenshub",
		Short: lenshubShortDesc,
		Long:  lenshubLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Path to the .lenshub directory (default: ./.lenshub or ~/.lenshub)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
