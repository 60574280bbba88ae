package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// CORSAllowHeaders are the request headers browser clients send to the relay.
var CORSAllowHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// CORS answers preflight requests from any origin. The browser client calls
// the relay directly.
func CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.OPTIONS},
		AllowHeaders: CORSAllowHeaders,
		MaxAge:       86400,
	})
}
