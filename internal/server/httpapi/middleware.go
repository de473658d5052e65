package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

// requireAuth resolves the bearer token to a user ID and stores it on the
// echo context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)

		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			return errMissingToken
		}

		id, err := s.users.Authenticate(token)
		if err != nil {
			return err
		}

		c.Set(userIDKey, id)
		return next(c)
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
