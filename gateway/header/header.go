// Package header handles the headers the relay gateway adds to requests and
// streamed responses.
package header

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id. A client supplied value is kept;
// otherwise a new uuid is assigned.
const RequestIDHeader = "X-Relay-Request-Id"

const requestIDKey = "relay.request_id"

// Handler manages headers between gateway connections.
type Handler struct {
	newID func() string
}

// NewHandler creates a new header Handler.
func NewHandler() *Handler {
	return &Handler{newID: uuid.NewString}
}

// RequestID is fiber middleware that assigns the request id, stores it in the
// request locals, and echoes it on the response.
func (h *Handler) RequestID(c *fiber.Ctx) error {
	id := c.Get(RequestIDHeader)
	if id == "" {
		id = h.newID()
	}

	c.Locals(requestIDKey, id)
	c.Set(RequestIDHeader, id)
	return c.Next()
}

// RequestIDFrom returns the id assigned by RequestID, or "" when the
// middleware did not run.
func RequestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// SetSSEHeaders prepares the response for a server-sent event stream.
func (h *Handler) SetSSEHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// Disables response buffering in nginx style reverse proxies.
	c.Set("X-Accel-Buffering", "no")
}
