package testconncmder_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	testconncmder "github.com/papercomputeco/relay/cmd/relay/testconn"
	"github.com/papercomputeco/relay/pkg/config"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := testconncmder.NewTestCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("NewTestCmd", func() {
	It("creates a command with the correct use string", func() {
		Expect(testconncmder.NewTestCmd().Use).To(Equal("test"))
	})

	It("registers the provider flag from the shared registry", func() {
		f := testconncmder.NewTestCmd().Flags().Lookup("provider")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("p"))
	})
})

var _ = Describe("Test command execution", func() {
	var (
		tmpDir     string
		authHeader string
		status     int
		upstream   *httptest.Server
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".relay"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(os.Chdir, origDir)

		authHeader = ""
		status = http.StatusOK
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader = r.Header.Get("Authorization")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"data":[]}`))
		}))
		DeferCleanup(upstream.Close)
	})

	It("succeeds when the provider accepts the key", func() {
		out, err := execute("--provider", "openai", "--api-key", "sk-test", "--base-url", upstream.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(authHeader).To(Equal("Bearer sk-test"))
		Expect(out).To(ContainSubstring("Testing connection to openai"))
		Expect(out).To(ContainSubstring("Credentials accepted."))
	})

	It("fails when the provider rejects the key", func() {
		status = http.StatusUnauthorized
		_, err := execute("--provider", "openai", "--api-key", "sk-bad", "--base-url", upstream.URL)
		Expect(err).To(MatchError(testconncmder.ErrConnectionFailed))
	})

	It("falls back to the configured provider endpoint", func() {
		cfger, err := config.NewConfiger("")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfger.SetConfigValue("providers.openai.api_key", "sk-from-config")).To(Succeed())
		Expect(cfger.SetConfigValue("providers.openai.base_url", upstream.URL)).To(Succeed())

		_, err = execute("--provider", "openai")
		Expect(err).NotTo(HaveOccurred())
		Expect(authHeader).To(Equal("Bearer sk-from-config"))
	})

	It("does not pair the configured key with another base url", func() {
		cfger, err := config.NewConfiger("")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfger.SetConfigValue("providers.openai.api_key", "sk-from-config")).To(Succeed())

		_, err = execute("--provider", "openai", "--base-url", upstream.URL)
		Expect(err).To(MatchError(config.ErrUnconfiguredBaseURL))
		Expect(authHeader).To(BeEmpty())
	})

	It("requires an api key", func() {
		_, err := execute("--provider", "anthropic", "--base-url", upstream.URL)
		Expect(err).To(MatchError(ContainSubstring("api key is required")))
	})

	It("rejects unknown providers", func() {
		_, err := execute("--provider", "ollama", "--api-key", "k")
		Expect(err).To(MatchError(ContainSubstring("unknown provider type")))
	})
})
