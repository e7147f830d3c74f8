// Package testconncmder provides the test command that checks a provider's
// credentials.
package testconncmder

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/pkg/cliui"
	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/llm/provider"
)

type testCommander struct {
	providerType string
	apiKey       string
	baseURL      string

	cfg *config.Config
}

const testLongDesc string = `Check that a provider accepts the configured credentials.

The API key and base URL default to the providers.<provider> entries in
.relay/config.toml. OpenRouter is not contacted and always succeeds.

Examples:
  relay test --provider anthropic
  relay test --provider openai --api-key sk-...
  relay test --provider openai --base-url http://localhost:4000/v1`

const testShortDesc string = "Check a provider's credentials"

// ErrConnectionFailed is returned when the provider rejects the credentials.
var ErrConnectionFailed = errors.New("connection test failed")

func NewTestCmd() *cobra.Command {
	cmder := &testCommander{}

	cmd := &cobra.Command{
		Use:   "test",
		Short: testShortDesc,
		Long:  testLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagProvider})

			cmder.cfg, err = config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.providerType)
	cmd.Flags().StringVar(&cmder.apiKey, "api-key", "", "API key (default: providers.<provider>.api_key)")
	cmd.Flags().StringVar(&cmder.baseURL, "base-url", "", "Override the provider's API base URL")

	return cmd
}

func (c *testCommander) run(cmd *cobra.Command) error {
	pt, err := provider.ParseType(c.cfg.Stream.Provider)
	if err != nil {
		return err
	}

	pc := &provider.Config{ProviderType: pt, APIKey: c.apiKey, BaseURL: c.baseURL}
	if err := c.cfg.Providers.Resolve(pc); err != nil {
		return err
	}
	if err := pc.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	err = cliui.Step(out, fmt.Sprintf("Testing connection to %s", pt), func() error {
		ok, err := pc.TestConnection(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			return ErrConnectionFailed
		}
		return nil
	})
	printResult(out, err)
	return err
}

func printResult(out io.Writer, err error) {
	if err != nil {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.ErrorStyle.Render(err.Error()))
		return
	}
	fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("Credentials accepted."))
}
