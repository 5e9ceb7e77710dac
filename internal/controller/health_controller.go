package controller

import (
	"roboto-sai-be/internal/dto"
	"roboto-sai-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

// HealthGauges reads live figures for the health report. Nil gauges report
// zero values.
type HealthGauges struct {
	StoreKind       func() string
	ActiveSessions  func() int
	StreamListeners func() int
}

type healthController struct {
	service string
	version string
	gauges  HealthGauges
}

func NewHealthController(service, version string, gauges HealthGauges) IHealthController {
	return &healthController{service: service, version: version, gauges: gauges}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	res := dto.HealthResponse{
		Status:  "healthy",
		Service: c.service,
		Version: c.version,
	}
	if c.gauges.StoreKind != nil {
		res.Store = c.gauges.StoreKind()
	}
	if c.gauges.ActiveSessions != nil {
		res.ActiveSessions = c.gauges.ActiveSessions()
	}
	if c.gauges.StreamListeners != nil {
		res.StreamListeners = c.gauges.StreamListeners()
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", res))
}
