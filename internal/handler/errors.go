package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/service"
	rules "github.com/fairyhunter13/fiscal-coupon-api/internal/validator"
)

// errorResponse is the JSON envelope of every error reply.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// validationError carries the failed field constraints of a request body.
type validationError struct {
	violations []rules.Violation
}

func (e *validationError) Error() string {
	return e.violations[0].Message()
}

// errorStatus maps service sentinels to HTTP status codes. First match wins.
var errorStatus = []struct {
	target error
	status int
	reason string
}{
	{service.ErrInvalidRequest, fiber.StatusBadRequest, "validation"},
	{service.ErrInvalidID, fiber.StatusBadRequest, "validation"},
	{service.ErrNoFieldsToUpdate, fiber.StatusBadRequest, "validation"},
	{service.ErrClientNotFound, fiber.StatusNotFound, "not_found"},
	{service.ErrRestaurantNotFound, fiber.StatusNotFound, "not_found"},
	{service.ErrCouponNotFound, fiber.StatusNotFound, "not_found"},
	{service.ErrClientExists, fiber.StatusConflict, "conflict"},
	{service.ErrRestaurantExists, fiber.StatusConflict, "conflict"},
	{service.ErrAmbiguousName, fiber.StatusConflict, "conflict"},
	{service.ErrReferenceNotFound, fiber.StatusNotFound, "reference"},
	{service.ErrNameMismatch, fiber.StatusNotFound, "reference"},
}

// failureReason labels err for the create-failure metric.
func failureReason(err error) string {
	var ve *validationError
	if errors.As(err, &ve) {
		return "validation"
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.target) {
			return e.reason
		}
	}
	return "db"
}

// bind parses the JSON body into req, sanitizes it and validates it.
func bind(c *fiber.Ctx, v *validator.Validate, req interface{ Normalize() }) error {
	if err := c.BodyParser(req); err != nil {
		return &validationError{violations: []rules.Violation{{Field: "body", Reason: "must be a JSON object"}}}
	}
	req.Normalize()
	if err := v.Struct(req); err != nil {
		return &validationError{violations: rules.Violations(err)}
	}
	return nil
}

// respondError writes the error envelope for err.
// Unknown errors are logged and reported as 500 with the cause in details.
func respondError(c *fiber.Ctx, err error) error {
	var ve *validationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error:   ve.Error(),
			Details: ve.violations,
		})
	}

	for _, e := range errorStatus {
		if errors.Is(err, e.target) {
			body := errorResponse{Error: e.target.Error()}
			if msg := err.Error(); msg != body.Error {
				body.Message = msg
			}
			return c.Status(e.status).JSON(body)
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(errorResponse{Error: fe.Message})
	}

	requestLog(c, log.Error()).Err(err).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
		Error:   "internal server error",
		Details: err.Error(),
	})
}

// ErrorHandler is the app-wide fallback for errors that escape a handler,
// including panics converted by the recover middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}

// NotFound answers any request that matched no route. Register it last.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errorResponse{
		Error:   "route not found",
		Message: c.Method() + " " + c.Path(),
	})
}

func requestLog(c *fiber.Ctx, e *zerolog.Event) *zerolog.Event {
	return e.
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("method", c.Method()).
		Str("path", c.Path())
}
