package initcmder_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/relay/cmd/relay/init"
	"github.com/papercomputeco/relay/pkg/config"
)

// loadConfig reads and parses the config.toml from the .relay directory
// within the given base directory.
func loadConfig(baseDir string) *config.Config {
	data, err := os.ReadFile(filepath.Join(baseDir, ".relay", "config.toml"))
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	cfg := &config.Config{}
	ExpectWithOffset(1, toml.Unmarshal(data, cfg)).To(Succeed())
	return cfg
}

func execute(args ...string) error {
	cmd := initcmder.NewInitCmd()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	return cmd.Execute()
}

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		Expect(initcmder.NewInitCmd().Use).To(Equal("init"))
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})

	It("has a --preset flag", func() {
		f := initcmder.NewInitCmd().Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(os.Chdir, origDir)
	})

	It("creates a .relay directory with a default config.toml", func() {
		Expect(execute()).To(Succeed())

		info, err := os.Stat(filepath.Join(tmpDir, ".relay"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())

		cfg := loadConfig(tmpDir)
		Expect(cfg.Version).To(Equal(config.CurrentV))
		Expect(cfg.Gateway.Listen).To(Equal(":8080"))
		Expect(cfg.Storage.Driver).To(Equal(config.StorageMemory))
	})

	It("keeps an existing config.toml without --preset", func() {
		dir := filepath.Join(tmpDir, ".relay")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[gateway]\nlisten = \":9999\"\n"), 0o600)).To(Succeed())

		Expect(execute()).To(Succeed())
		Expect(loadConfig(tmpDir).Gateway.Listen).To(Equal(":9999"))
	})

	DescribeTable("writes provider presets",
		func(preset, provider, model string) {
			Expect(execute("--preset", preset)).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Stream.Provider).To(Equal(provider))
			Expect(cfg.Stream.Model).To(Equal(model))
		},
		Entry("openai", "openai", "openai", "gpt-4o-mini"),
		Entry("anthropic", "anthropic", "anthropic", "claude-sonnet-4-20250514"),
		Entry("google", "google", "google", "gemini-1.5-flash"),
	)

	It("rejects unknown preset names", func() {
		err := execute("--preset", "ollama")
		Expect(err).To(MatchError(ContainSubstring("unknown preset")))
	})

	It("overwrites the config when re-run with a different preset", func() {
		Expect(execute("--preset", "openai")).To(Succeed())
		Expect(loadConfig(tmpDir).Stream.Provider).To(Equal("openai"))

		Expect(execute("--preset", "anthropic")).To(Succeed())
		Expect(loadConfig(tmpDir).Stream.Provider).To(Equal("anthropic"))
	})

	Describe("--preset with remote URL", func() {
		It("fetches and writes a remote config.toml", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "version = 0\n\n[gateway]\nlisten = \":9090\"\n\n[stream]\nprovider = \"google\"\n")
			}))
			DeferCleanup(server.Close)

			Expect(execute("--preset", server.URL)).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Gateway.Listen).To(Equal(":9090"))
			Expect(cfg.Stream.Provider).To(Equal("google"))
		})

		It("returns an error for a non-200 response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			DeferCleanup(server.Close)

			Expect(execute("--preset", server.URL)).To(MatchError(ContainSubstring("HTTP 404")))
		})

		It("returns an error for invalid TOML", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "this is not valid toml [[[")
			}))
			DeferCleanup(server.Close)

			Expect(execute("--preset", server.URL)).To(MatchError(ContainSubstring("parsing")))
		})

		It("returns an error for an unreachable URL", func() {
			Expect(execute("--preset", "http://127.0.0.1:1")).To(MatchError(ContainSubstring("fetching remote config")))
		})
	})
})
