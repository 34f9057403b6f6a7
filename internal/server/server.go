// Package server exposes the metric groups over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
	"github.com/rs/zerolog/log"
)

// RoutePrefix is the path prefix of every insight route.
const RoutePrefix = "/api/insight"

// shutdownTimeout bounds the graceful shutdown.
const shutdownTimeout = 5 * time.Second

// InsightService fetches one metric group of a repository.
type InsightService interface {
	Group(ctx context.Context, group schema.MetricGroup, repo string) (schema.Tabular, error)
}

// Handler serves the insight routes.
type Handler struct {
	svc InsightService
}

// NewHandler creates a handler backed by svc.
func NewHandler(svc InsightService) *Handler {
	return &Handler{svc: svc}
}

// RoutePath returns the route of a metric group, e.g. /api/insight/issue/statistics.
func RoutePath(group schema.MetricGroup) string {
	return RoutePrefix + "/" + strings.ReplaceAll(string(group), ".", "/")
}

// NewApp builds the fiber app with one GET route per metric group.
func NewApp(svc InsightService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "gitinsight",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
	}))

	h := NewHandler(svc)
	for _, group := range schema.AllMetricGroups {
		app.Get(RoutePath(group), h.GetGroup(group))
	}
	return app
}

// GetGroup returns the fiber handler of one metric group.
// The query parameter repo_name is required, granularity is optional.
func (h *Handler) GetGroup(group schema.MetricGroup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		repo := c.Query("repo_name", "")
		if repo == "" {
			return c.Status(http.StatusBadRequest).JSON(schema.APIResponse{
				Success: false,
				Message: "repo_name is required",
			})
		}
		if err := contract.ValidateRepo(repo); err != nil {
			return c.Status(http.StatusBadRequest).JSON(schema.APIResponse{
				Success: false,
				Message: err.Error(),
			})
		}

		granularity := schema.Granularity(strings.ToLower(c.Query("granularity", string(schema.AllGranularity))))
		if _, ok := schema.ValidGranularityFilters[granularity]; !ok {
			return c.Status(http.StatusBadRequest).JSON(schema.APIResponse{
				Success: false,
				Message: "granularity must be all, year, quarter or month",
			})
		}

		result, err := h.svc.Group(c.UserContext(), group, repo)
		if err != nil {
			log.Error().Err(err).Str("group", string(group)).Str("repo", repo).Msg("Group fetch failed")
			return c.Status(http.StatusInternalServerError).JSON(schema.APIResponse{
				Success: false,
				Message: err.Error(),
			})
		}

		return c.JSON(schema.APIResponse{
			Success: true,
			Data:    schema.FilterGranularity(result, granularity),
		})
	}
}

// Run serves svc on addr until ctx is cancelled or SIGINT/SIGTERM arrives.
func Run(ctx context.Context, addr string, svc InsightService) error {
	app := NewApp(svc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()
	log.Info().Str("addr", addr).Msg("Server started")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
