// Package streamcmder provides the stream command that runs one streamed
// generation directly against a provider.
package streamcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/relay/pkg/cliui"
	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/llm/provider"
	"github.com/papercomputeco/relay/pkg/stream"
)

type streamCommander struct {
	providerType string
	model        string
	maxTokens    uint
	system       string
	apiKey       string
	baseURL      string
	temperature  float64
	raw          bool

	cfg *config.Config
}

var streamFlags = []string{
	config.FlagProvider,
	config.FlagModel,
	config.FlagMaxTokens,
}

const streamLongDesc string = `Stream a single generation from a provider.

The prompt is taken from the arguments, or from stdin when no arguments are
given. Text is written as it arrives. On a terminal the finished answer is
rendered as markdown instead, unless --raw is set.

Chunks the decoder cannot parse are reported as warnings on stderr and the
stream continues. A token usage summary is printed to stderr at the end.

Examples:
  relay stream "Explain server-sent events in one paragraph"
  relay stream -p anthropic -m claude-haiku-4-20250514 "Hello"
  echo "Summarize this" | relay stream --raw`

const streamShortDesc string = "Stream a generation from a provider"

func NewStreamCmd() *cobra.Command {
	cmder := &streamCommander{}

	cmd := &cobra.Command{
		Use:   "stream [prompt...]",
		Short: streamShortDesc,
		Long:  streamLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, streamFlags)

			cmder.cfg, err = config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			req := cmder.request(prompt)
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &cmder.temperature
			}
			return cmder.run(cmd.Context(), req, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.providerType)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxTokens, &cmder.maxTokens)
	cmd.Flags().StringVar(&cmder.system, "system", "", "System prompt")
	cmd.Flags().StringVar(&cmder.apiKey, "api-key", "", "API key (default: providers.<provider>.api_key)")
	cmd.Flags().StringVar(&cmder.baseURL, "base-url", "", "Override the provider's API base URL")
	cmd.Flags().Float64Var(&cmder.temperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Write text as it arrives, even on a terminal")

	return cmd
}

// readPrompt joins args, falling back to all of stdin.
func readPrompt(args []string, stdin io.Reader) (string, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading prompt: %w", err)
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return "", errors.New("a prompt is required")
	}
	return prompt, nil
}

func (c *streamCommander) request(prompt string) *llm.ChatRequest {
	maxTokens := int(c.cfg.Stream.MaxTokens)
	return &llm.ChatRequest{
		Model:     c.cfg.Stream.Model,
		Messages:  []llm.Message{llm.NewTextMessage("user", prompt)},
		System:    c.system,
		MaxTokens: &maxTokens,
	}
}

func (c *streamCommander) run(ctx context.Context, req *llm.ChatRequest, out, errOut io.Writer) error {
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

	chunks, err := pc.OpenStream(ctx, req)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer chunks.Close()

	acc := llm.NewAccumulator(string(pt), req.Model)

	if !c.raw && isTerminal(out) {
		err = cliui.Step(errOut, fmt.Sprintf("Streaming from %s/%s", pt, req.Model), func() error {
			return drain(chunks, acc, nil, errOut)
		})
		if err == nil {
			rendered, _ := cliui.RenderMarkdown(acc.Transcript().Text(), terminalWidth(out))
			fmt.Fprint(out, rendered)
		}
	} else {
		err = drain(chunks, acc, out, errOut)
		fmt.Fprintln(out)
	}

	printSummary(errOut, acc.Transcript())
	return err
}

// drain reads chunks into acc until the stream ends, echoing text deltas to
// live when it is set. Decode errors are reported and skipped.
func drain(chunks *provider.ChunkStream, acc *llm.Accumulator, live, errOut io.Writer) error {
	for {
		chunk, err := chunks.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			acc.AddError(err)
			if stream.IsTerminal(err) {
				return err
			}
			fmt.Fprintf(errOut, "%s %s\n", cliui.FailMark, cliui.ErrorStyle.Render("warning: "+err.Error()))
			continue
		}

		acc.Add(chunk)
		if live != nil && chunk.Delta != "" {
			fmt.Fprint(live, chunk.Delta)
		}
	}
}

func printSummary(w io.Writer, t *llm.Transcript) {
	parts := []string{
		fmt.Sprintf("%d chunks", t.Chunks),
		fmt.Sprintf("%d in / %d out tokens", t.Usage.PromptTokens, t.Usage.CompletionTokens),
	}
	if cost, ok := provider.EstimateCost(t.Model, t.Usage); ok {
		parts = append(parts, fmt.Sprintf("$%.6f", cost))
	}
	if t.StopReason != "" {
		parts = append(parts, "stop: "+t.StopReason)
	}
	if len(t.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", len(t.Errors)))
	}
	fmt.Fprintf(w, "%s\n", cliui.DimStyle.Render(strings.Join(parts, " · ")))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
