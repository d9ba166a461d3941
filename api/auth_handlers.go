package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lenshub/lenshub/pkg/market"
	"github.com/lenshub/lenshub/pkg/session"
)

type signUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Profile *market.Profile `json:"profile"`
}

func (s *Server) handleSignUp(c *fiber.Ctx) error {
	var req signUpRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "username and password required"})
	}

	if _, err := s.storer.GetProfileByUsername(c.Context(), req.Username); err == nil {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "username already taken"})
	}

	profile := &market.Profile{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      market.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.storer.CreateProfile(c.Context(), profile); err != nil {
		return storeError(c, err)
	}

	token, err := s.sessions.SignUp(req.Username, req.Password, profile.ID)
	if err != nil {
		if errors.Is(err, session.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "username already taken"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, Profile: profile})
}

func (s *Server) handleSignIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "username and password required"})
	}

	token, profileID, err := s.sessions.SignIn(req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "invalid username or password"})
	}

	profile, err := s.storer.GetProfile(c.Context(), profileID)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(authResponse{Token: token, Profile: profile})
}

func (s *Server) handleSignOut(c *fiber.Ctx) error {
	s.sessions.SignOut(bearerToken(c))
	return c.SendStatus(fiber.StatusNoContent)
}
