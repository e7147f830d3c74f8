package config_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/config"
)

var _ = Describe("Watch", func() {
	var (
		tmpDir  string
		c       *config.Configer
		changes chan *config.Config
		errs    chan error
		cancel  context.CancelFunc
		done    chan error
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		writeConfig(tmpDir, "[gateway]\nlisten = \":8080\"\n")

		var err error
		c, err = config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		changes = make(chan *config.Config, 16)
		errs = make(chan error, 16)
		done = make(chan error, 1)

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		go func() {
			done <- c.Watch(ctx,
				func(cfg *config.Config) { changes <- cfg },
				func(err error) { errs <- err },
			)
		}()

		// Give the watcher time to register the directory.
		time.Sleep(100 * time.Millisecond)
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})

	It("reloads when config.toml is rewritten", func() {
		writeConfig(tmpDir, "[providers.openai]\nbase_url = \"http://localhost:4000/v1\"\n")

		// A rewrite may be observed as truncate then write.
		Eventually(func() string {
			select {
			case cfg := <-changes:
				return cfg.Providers.OpenAI.BaseURL
			default:
				return ""
			}
		}, 5*time.Second).Should(Equal("http://localhost:4000/v1"))
	})

	It("reports parse failures without stopping", func() {
		writeConfig(tmpDir, "not toml [[[")
		Eventually(errs, 5*time.Second).Should(Receive())

		writeConfig(tmpDir, "[stream]\nmodel = \"gpt-4o\"\n")
		Eventually(func() string {
			select {
			case cfg := <-changes:
				return cfg.Stream.Model
			default:
				return ""
			}
		}, 5*time.Second).Should(Equal("gpt-4o"))
	})
})
