package logger

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
)

// RequestLogger prints one line per request with timing information.
func RequestLogger() fiber.Handler {
	return fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	})
}
