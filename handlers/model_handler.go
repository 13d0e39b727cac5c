package handlers

import (
	"github.com/gofiber/fiber/v2"

	"actuarial-runner-server/middleware"
	"actuarial-runner-server/models"
	"actuarial-runner-server/services"
)

type ModelHandler struct {
	runner  *services.RunnerService
	catalog *services.CatalogService
	db      *services.DBService
	redis   *services.RedisService
}

func NewModelHandler(runner *services.RunnerService, catalog *services.CatalogService, db *services.DBService, redis *services.RedisService) *ModelHandler {
	return &ModelHandler{runner: runner, catalog: catalog, db: db, redis: redis}
}

// ListModels godoc
// @Summary List available models
// @Description Get the model catalog with per-family limits
// @Tags models
// @Produce json
// @Success 200 {array} models.CatalogListItem
// @Router /models [get]
func (h *ModelHandler) ListModels(c *fiber.Ctx) error {
	return c.JSON(h.catalog.List())
}

// RunModel godoc
// @Summary Run a model
// @Description Execute a statistical model over the supplied dataset and wait for the result
// @Tags models
// @Accept json
// @Produce json
// @Param type path string true "Model type"
// @Param request body models.RunRequest true "Dataset and parameters"
// @Success 200 {object} models.RunResponse
// @Failure 400 {object} models.DispatchError
// @Failure 404 {object} models.DispatchError
// @Failure 429 {object} models.DispatchError
// @Router /models/{type}/run [post]
func (h *ModelHandler) RunModel(c *fiber.Ctx) error {
	modelType := c.Params("type")

	var req models.RunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	identity := middleware.Identity(c)

	// The X-Ray context carries the request segment into the Redis and S3
	// subsegments recorded during the run.
	ctx := middleware.GetXRayContext(c)

	resp, derr := h.runner.Dispatch(ctx, identity, modelType, &req)
	if derr != nil {
		return c.Status(derr.HTTPStatus()).JSON(fiber.Map{
			"status": models.StatusRejected,
			"error":  derr,
		})
	}

	return c.JSON(resp)
}

// ListRuns godoc
// @Summary List recent runs
// @Description Get execution history for the calling identity
// @Tags runs
// @Produce json
// @Param limit query int false "Number of results to return" default(20)
// @Success 200 {array} models.RunListItem
// @Router /runs [get]
func (h *ModelHandler) ListRuns(c *fiber.Ctx) error {
	identity := middleware.Identity(c)
	limit := c.QueryInt("limit", 20)

	runs, err := h.db.ListRuns(c.Context(), identity, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if runs == nil {
		runs = []models.RunListItem{}
	}

	return c.JSON(runs)
}

// GetRun godoc
// @Summary Get one run
// @Description Get a single run by execution ID; hot results come from the cache
// @Tags runs
// @Produce json
// @Param id path string true "Execution ID"
// @Success 200 {object} models.ModelRun
// @Failure 404 {object} map[string]string
// @Router /runs/{id} [get]
func (h *ModelHandler) GetRun(c *fiber.Ctx) error {
	identity := middleware.Identity(c)
	executionID := c.Params("id")

	// Cached enriched results skip Postgres during the TTL window.
	if cached, err := h.redis.GetCachedResult(c.Context(), executionID); err == nil && cached != nil {
		return c.JSON(fiber.Map{
			"status":       models.StatusAccepted,
			"execution_id": executionID,
			"result":       cached,
		})
	}

	run, err := h.db.GetRun(c.Context(), identity, executionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if run == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "run not found",
		})
	}

	return c.JSON(run)
}
