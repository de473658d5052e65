package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/cakelibrary/internal/server/models"
	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

type profileResponse struct {
	User *models.User `json:"user"`
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	ctx := c.Request().Context()
	s.logger.Info(ctx, "Registration request", "username", req.Username)

	u, err := s.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID, "username", u.Username)
	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	res, err := s.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   res.Token,
		User:    res.User,
	})
}

func (s *Server) logout(c echo.Context) error {
	if err := s.users.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) profile(c echo.Context) error {
	u, err := s.users.Profile(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{User: u})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
