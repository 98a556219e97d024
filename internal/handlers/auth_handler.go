package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/cloud-media-platform/internal/apperr"
)

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/register
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.ErrValidation)
	}
	res, err := h.auth.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	h.log.Infow("user registered", "user_id", res.User.ID)
	return c.Status(fiber.StatusCreated).JSON(res)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperr.ErrValidation)
	}
	res, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}
