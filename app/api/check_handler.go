package api

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

type CheckHandler struct{}

func NewCheckHandler() *CheckHandler {
	return &CheckHandler{}
}

func (h CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	hostname, _ := os.Hostname()
	return c.JSON(fiber.Map{
		"status":    "OK",
		"server":    hostname,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
