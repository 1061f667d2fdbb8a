package main

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hearthsim/go-ngdp/pkg/ngdp"
)

var mirrorNamespaces = map[string]bool{
	"config": true,
	"data":   true,
	"patch":  true,
}

// Server mirrors hash-addressed NGDP objects: requests are served from the
// local content cache, and misses are fetched from the upstream CDN and
// cached before responding. The URL scheme is the CDN's own,
// /{namespace}/{aa}/{bb}/{name}, so a mirror can be used as a drop-in CDN
// host.
type Server struct {
	client *ngdp.Client
	log    *slog.Logger
}

// NewServer creates a mirror server backed by client.
func NewServer(client *ngdp.Client, log *slog.Logger) *Server {
	return &Server{client: client, log: log}
}

// SetupRoutes registers all endpoints on the Fiber app
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/status", s.HandleStatus)
	app.Get("/:namespace/:aa/:bb/:name", s.HandleObject)
}

// HandleStatus reports what this mirror serves
func (s *Server) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"region": s.client.Region(),
		"cache":  s.client.Cache().Dir(),
	})
}

// HandleObject serves one hash-addressed object through the cache
func (s *Server) HandleObject(c *fiber.Ctx) error {
	namespace := c.Params("namespace")
	aa := c.Params("aa")
	bb := c.Params("bb")
	name := c.Params("name")

	if !mirrorNamespaces[namespace] {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown namespace",
		})
	}
	// The shard segments must agree with the object name; anything else
	// is a malformed CDN path, not a miss.
	if len(name) < 4 || name[0:2] != aa || name[2:4] != bb {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "object name does not match shard path",
		})
	}

	data, err := s.client.Fetch(c.UserContext(), namespace, name)
	if err != nil {
		var serverErr *ngdp.ServerError
		if errors.As(err, &serverErr) {
			return c.Status(serverErr.Status).JSON(fiber.Map{
				"error": "upstream CDN error",
			})
		}
		s.log.Error("fetch failed", "namespace", namespace, "name", name, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "application/octet-stream")
	return c.Send(data)
}
