// Package v1 implements version 1 of the RESTful API.
package v1

import "github.com/gofiber/fiber/v2"

// ServerInfo contains information about the API server.
type ServerInfo struct {
	Name       string `json:"server"`
	APIVersion string `json:"apiVersion"`
}

var serverInfo = ServerInfo{
	Name:       "regdomain",
	APIVersion: "v1",
}

// GetServerInfo returns information about the API server.
func GetServerInfo(c *fiber.Ctx) error {
	return c.JSON(&serverInfo)
}

// StandardError is the standard error response.
type StandardError struct {
	Message string `json:"error"`
}

func sendError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(&StandardError{Message: message})
}

// Routes sets up routes for the /v1 endpoint.
func Routes(router fiber.Router, dm *DomainManager) {
	v1 := router.Group("/v1")
	v1.Get("/", GetServerInfo)
	dm.Routes(v1)
}
