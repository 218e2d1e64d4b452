// Package handler contains the HTTP handlers for the storefront and the
// staff back office.
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userIDFrom reads the numeric subject stored by the JWT middleware. JWT
// numeric claims arrive as float64; tokens issued by older builds carry the
// id as a string.
func userIDFrom(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	case uint64:
		return v, true
	}
	return 0, false
}

// customerCodeFrom reads the legacy KH code claim, empty for staff tokens.
func customerCodeFrom(c echo.Context) string {
	if code, ok := c.Get("code").(string); ok {
		return code
	}
	return ""
}
