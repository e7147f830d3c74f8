// Package modelscmder provides the models command that lists a provider's
// built-in model catalog.
package modelscmder

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/pkg/cliui"
	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/llm/provider"
)

type modelsCommander struct {
	providerType string
	cfg          *config.Config
}

const modelsLongDesc string = `List the models relay knows for a provider.

Shows each model's context window and list price per million tokens.
OpenRouter has no built-in catalog.

Examples:
  relay models
  relay models --provider google`

const modelsShortDesc string = "List a provider's models"

func NewModelsCmd() *cobra.Command {
	cmder := &modelsCommander{}

	cmd := &cobra.Command{
		Use:   "models",
		Short: modelsShortDesc,
		Long:  modelsLongDesc,
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
			return cmder.run(cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.providerType)

	return cmd
}

func (c *modelsCommander) run(out io.Writer) error {
	pt, err := provider.ParseType(c.cfg.Stream.Provider)
	if err != nil {
		return err
	}

	pc := &provider.Config{ProviderType: pt}
	models := pc.DefaultModels()
	if len(models) == 0 {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("No built-in models for %s.", pt)))
		return nil
	}

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		rows = append(rows, modelRow(m))
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeadingStyle.Render(fmt.Sprintf("%s models", pt)))
	fmt.Fprintln(out, cliui.Table([]string{"ID", "Name", "Context", "Input $/1M", "Output $/1M"}, rows))
	return nil
}

func modelRow(m provider.ModelInfo) []string {
	window, input, output := "-", "-", "-"
	if m.ContextWindow != nil {
		window = strconv.Itoa(*m.ContextWindow)
	}
	if m.Pricing != nil {
		input = strconv.FormatFloat(m.Pricing.InputCostPer1M, 'f', -1, 64)
		output = strconv.FormatFloat(m.Pricing.OutputCostPer1M, 'f', -1, 64)
	}
	return []string{m.ID, m.DisplayName, window, input, output}
}
