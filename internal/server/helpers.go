package server

import (
	"errors"

	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/repository"
	"discovrr/internal/thunk"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

const maxPaginationLimit = 100

func statusFor(code string) int {
	switch code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeConflict, models.CodeConditionFailed:
		return fiber.StatusConflict
	case models.CodeAborted:
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status its code maps to.
func respondError(c *fiber.Ctx, err error) error {
	code := thunk.Code(err)
	response := ErrorResponse{Error: err.Error(), Code: code}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		response.Error = appErr.Message
		if appErr.Err != nil && code != models.CodeInternal {
			response.Details = appErr.Err.Error()
		}
	}
	if code == models.CodeInternal {
		response.Error = "Internal server error"
	}
	return c.Status(statusFor(code)).JSON(response)
}

// settled treats a skipped action as success: the state already holds what
// the request asked for.
func settled(err error) error {
	if errors.Is(err, thunk.ErrConditionFailed) {
		return nil
	}
	return err
}

// parsePage extracts limit and offset query parameters.
func parsePage(c *fiber.Ctx, defaultLimit int) repository.Page {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

func wantsReload(c *fiber.Ctx) bool {
	return c.QueryBool("reload", false)
}

func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// entityResponse answers with id from table. A fetch skipped because another
// request for the same id is still in flight has nothing to return yet.
func entityResponse[T any](c *fiber.Ctx, table entity.Table[T], id string) error {
	e, ok := table.SelectByID(id)
	if !ok {
		if table.StatusOf(id).Status.InFlight() {
			return respondError(c, &thunk.ConditionError{Action: "fetch " + id})
		}
		return respondError(c, models.NewNotFoundError("entity", id))
	}
	return c.JSON(fiber.Map{
		"data":   e,
		"status": table.StatusOf(id).Status,
	})
}

// listResponse answers with items and the collection status.
func listResponse[T any](c *fiber.Ctx, items []T, status entity.FetchStatus) error {
	if items == nil {
		items = []T{}
	}
	body := fiber.Map{"data": items, "status": status.Status}
	if status.Err != nil {
		body["error"] = status.Err.Error()
	}
	return c.JSON(body)
}

// likeRequest is the body of every like toggle.
type likeRequest struct {
	DidLike *bool `json:"didLike"`
}

func (r likeRequest) value() (bool, error) {
	if r.DidLike == nil {
		return false, models.NewValidationError("didLike is required")
	}
	return *r.DidLike, nil
}
