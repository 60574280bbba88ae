package websocket

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler upgrades an authenticated request on /ws. The caller's user id is
// expected under "user_id" on the echo context.
func (s *Server) Handler(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user")
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(conn, userID)
	client.Run()
	s.hub.Register(client)
	defer s.hub.Unregister(client)

	<-client.Context().Done()
	return nil
}
