package server

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

type preferenceRequest struct {
	Value *string `json:"value"`
}

func (s *Server) listPreferences(c *fiber.Ctx) error {
	prefs, err := s.deps.Preferences.All(c.UserContext(), learnerID(c))
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, prefs)
}

func (s *Server) getPreference(c *fiber.Ctx) error {
	key, err := preferenceKey(c)
	if err != nil {
		return badRequest(c, "invalid preference key")
	}
	pref, err := s.deps.Preferences.Get(c.UserContext(), learnerID(c), key)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, pref)
}

func (s *Server) setPreference(c *fiber.Ctx) error {
	key, err := preferenceKey(c)
	if err != nil {
		return badRequest(c, "invalid preference key")
	}

	var req preferenceRequest
	if err := c.BodyParser(&req); err != nil || req.Value == nil {
		return badRequest(c, "body must be {\"value\": \"...\"}")
	}

	pref, err := s.deps.Preferences.Set(c.UserContext(), learnerID(c), key, *req.Value)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, pref)
}

// preferenceKey unescapes the key segment; keys such as designer:positions:v1 contain colons
func preferenceKey(c *fiber.Ctx) (string, error) {
	return url.PathUnescape(c.Params("key"))
}
