package header

import (
	"net/http"
	"net/http/httptest"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RequestID", func() {
	var (
		app  *fiber.App
		hh   *Handler
		seen string
	)

	BeforeEach(func() {
		app = fiber.New()
		hh = NewHandler()
		seen = ""

		app.Use(hh.RequestID)
		app.Get("/test", func(c *fiber.Ctx) error {
			seen = RequestIDFrom(c)
			return c.SendStatus(fiber.StatusOK)
		})
	})

	AfterEach(func() {
		_ = app.Shutdown()
	})

	It("assigns a uuid when the client sends none", func() {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()

		Expect(uuid.Validate(seen)).To(Succeed())
		Expect(resp.Header.Get(RequestIDHeader)).To(Equal(seen))
	})

	It("keeps a client supplied id", func() {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "req-123")

		resp, err := app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()

		Expect(seen).To(Equal("req-123"))
		Expect(resp.Header.Get(RequestIDHeader)).To(Equal("req-123"))
	})

	It("uses a fresh id per request", func() {
		var ids []string
		for range 2 {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			ids = append(ids, seen)
		}
		Expect(ids[0]).NotTo(Equal(ids[1]))
	})
})

var _ = Describe("RequestIDFrom", func() {
	It("returns empty when the middleware did not run", func() {
		app := fiber.New()
		var seen = "unset"
		app.Get("/", func(c *fiber.Ctx) error {
			seen = RequestIDFrom(c)
			return nil
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(seen).To(BeEmpty())
	})
})

var _ = Describe("SetSSEHeaders", func() {
	It("sets event stream headers", func() {
		app := fiber.New()
		hh := NewHandler()
		app.Get("/", func(c *fiber.Ctx) error {
			hh.SetSSEHeaders(c)
			return c.SendString("data: x\n\n")
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()

		Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))
		Expect(resp.Header.Get("Cache-Control")).To(Equal("no-cache"))
		Expect(resp.Header.Get("X-Accel-Buffering")).To(Equal("no"))
	})
})
