// Package configcmder provides the config command for managing persistent
// lenshub configuration stored in the .lenshub/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent lenshub configuration.

Configuration is stored as config.toml in the .lenshub/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.sqlite_path,
  api.listen, api.public_url,
  spark.app_id, spark.api_key, spark.api_secret, spark.transport,
  dashscope.api_key,
  event_stream.provider, event_stream.topic

Use subcommands to get, set, or list configuration values:
  lenshub config set <key> <value>    Set a configuration value
  lenshub config get <key>            Get a configuration value
  lenshub config list                 List all configuration values

Examples:
  lenshub config set spark.app_id 6595110b
  lenshub config set spark.transport sse
  lenshub config get dashscope.api_key
  lenshub config list`

const configShortDesc string = "Manage persistent lenshub configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
