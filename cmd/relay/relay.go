// Package relaycmder
package relaycmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/relay/cmd/relay/config"
	initcmder "github.com/papercomputeco/relay/cmd/relay/init"
	modelscmder "github.com/papercomputeco/relay/cmd/relay/models"
	servecmder "github.com/papercomputeco/relay/cmd/relay/serve"
	streamcmder "github.com/papercomputeco/relay/cmd/relay/stream"
	testconncmder "github.com/papercomputeco/relay/cmd/relay/testconn"
	versioncmder "github.com/papercomputeco/relay/cmd/version"
)

const relayLongDesc string = `Relay is a streaming gateway for LLM provider APIs.

It speaks the OpenAI, Anthropic and Google streaming protocols, relays
normalized chunks to clients as server-sent events, and records a transcript
of every stream.

Get started:
  relay init --preset openai   Write a local .relay/config.toml
  relay test                   Check provider credentials
  relay stream "Hello"         Stream a completion to the terminal
  relay serve                  Run the gateway`

const relayShortDesc string = "Relay - LLM streaming gateway"

func NewRelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "relay",
		Short:        relayShortDesc,
		Long:         relayLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .relay/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(testconncmder.NewTestCmd())
	cmd.AddCommand(modelscmder.NewModelsCmd())
	cmd.AddCommand(streamcmder.NewStreamCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
