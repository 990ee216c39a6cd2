// Package router wires the HTTP handlers and their middleware onto an
// Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/radical-ticket/internal/handler"
	"github.com/iliyamo/radical-ticket/internal/middleware"
	"github.com/iliyamo/radical-ticket/internal/utils"
)

// Options carries the optional middleware applied to groups of routes.
type Options struct {
	// AdminSecret guards /populate_tickets and /clear_cache with an ADMIN
	// token when non-empty.
	AdminSecret string
	// ReserveLimiter, when set, wraps /reserve.
	ReserveLimiter echo.MiddlewareFunc
}

// RegisterRoutes registers the health probe and the ticket API.
func RegisterRoutes(e *echo.Echo, h *handler.TicketHandler, opts Options) {
	e.GET("/healthz", handler.Health)

	var admin []echo.MiddlewareFunc
	if opts.AdminSecret != "" {
		admin = append(admin, middleware.JWTAuth(opts.AdminSecret), middleware.RequireRole(utils.RoleAdmin))
	}
	e.POST("/populate_tickets", h.PopulateTickets, admin...)
	e.POST("/clear_cache", h.ClearCache, admin...)

	e.GET("/", h.ListAvailable)
	e.GET("/get_ticket/:id", h.GetTicket)

	var reserve []echo.MiddlewareFunc
	if opts.ReserveLimiter != nil {
		reserve = append(reserve, opts.ReserveLimiter)
	}
	e.POST("/reserve", h.Reserve, reserve...)
	e.POST("/fraud_gate", h.FraudGate)
	e.POST("/rw_set", h.RWSet)
}
