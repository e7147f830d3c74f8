package servecmder_test

import (
	"io"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	servecmder "github.com/papercomputeco/relay/cmd/relay/serve"
)

var _ = Describe("NewServeCmd", func() {
	It("registers the gateway, storage and events flags", func() {
		cmd := servecmder.NewServeCmd()
		for _, name := range []string{
			"listen", "name", "workers", "queue-size", "storage", "sqlite",
			"postgres", "events", "kafka-brokers", "kafka-topic", "log-file",
		} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
		Expect(cmd.Flags().Lookup("listen").DefValue).To(Equal(":8080"))
	})

	Context("when execution fails before listening", func() {
		var tmpDir string

		BeforeEach(func() {
			tmpDir = GinkgoT().TempDir()
			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.MkdirAll(filepath.Join(tmpDir, ".relay"), 0o755)).To(Succeed())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(os.Chdir, origDir)
		})

		execute := func(args ...string) error {
			cmd := servecmder.NewServeCmd()
			cmd.Flags().Bool("debug", false, "")
			cmd.SetArgs(args)
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			return cmd.Execute()
		}

		It("requires a DSN for postgres storage", func() {
			err := execute("--storage", "postgres")
			Expect(err).To(MatchError(ContainSubstring("postgres storage requires")))
		})

		It("rejects an unknown storage driver", func() {
			err := execute("--storage", "mysql")
			Expect(err).To(MatchError(ContainSubstring("invalid value for storage.driver")))
		})

		It("reports an unwritable log file", func() {
			err := execute("--log-file", filepath.Join(tmpDir, "missing", "relay.log"))
			Expect(err).To(MatchError(ContainSubstring("opening log file")))
		})
	})
})
