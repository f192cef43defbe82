package server

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/forgelabs/forgelabs/internal/learner"
)

// GET /api/events
//
// Streams the learner record as "state" events: the current value first,
// then one per committed change. Changes that arrive faster than the client
// reads are coalesced to the latest.
func (s *Server) events(c *gin.Context) {
	ctx := c.Request.Context()
	updates := make(chan learner.State, 1)
	unsubscribe := s.ctrl.Subscribe(func(st learner.State) {
		for {
			select {
			case updates <- st:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("state", s.ctrl.State(ctx))
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case st := <-updates:
			c.SSEvent("state", st)
			return true
		}
	})
}
