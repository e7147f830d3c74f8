package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/relay/cmd/relay/config"
	"github.com/papercomputeco/relay/pkg/config"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := configcmder.NewConfigCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		Expect(configcmder.NewConfigCmd().Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmds := configcmder.NewConfigCmd().Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// A local .relay dir makes the manager resolve here instead of $HOME.
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".relay"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(os.Chdir, origDir)
	})

	configured := func() *config.Config {
		cfger, err := config.NewConfiger("")
		Expect(err).NotTo(HaveOccurred())
		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		return cfg
	}

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			_, err := execute("set", "stream.provider", "anthropic")
			Expect(err).NotTo(HaveOccurred())

			_, err = os.Stat(filepath.Join(tmpDir, ".relay", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(configured().Stream.Provider).To(Equal("anthropic"))
		})

		It("sets provider endpoint overrides", func() {
			_, err := execute("set", "providers.openrouter.base_url", "http://localhost:9000/v1")
			Expect(err).NotTo(HaveOccurred())
			Expect(configured().Providers.OpenRouter.BaseURL).To(Equal("http://localhost:9000/v1"))
		})

		It("rejects unknown keys", func() {
			_, err := execute("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring(`unknown config key: "invalid_key"`)))
		})

		It("rejects invalid values", func() {
			_, err := execute("set", "storage.driver", "mysql")
			Expect(err).To(MatchError(ContainSubstring("invalid value for storage.driver")))
		})

		It("requires exactly two arguments", func() {
			_, err := execute("set", "stream.provider")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("reports unset values", func() {
			out, err := execute("get", "providers.google.base_url")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("<not set>"))
		})

		It("reads back a value that was set", func() {
			_, err := execute("set", "stream.model", "gemini-1.5-pro")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("get", "stream.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("gemini-1.5-pro"))
		})

		It("rejects unknown keys", func() {
			_, err := execute("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			_, err := execute("get")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			for _, key := range config.ValidConfigKeys() {
				Expect(out).To(ContainSubstring(key))
			}
		})

		It("masks api keys", func() {
			_, err := execute("set", "providers.openai.api_key", "sk-secret-1234")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(ContainSubstring("sk-secret-1234"))
			Expect(out).To(ContainSubstring(`"**********1234"`))
		})

		It("rejects arguments", func() {
			_, err := execute("list", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
