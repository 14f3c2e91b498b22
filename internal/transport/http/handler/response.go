package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/product-catalog/internal/domain"
	"github.com/sakashimaa/product-catalog/internal/repository"
	"github.com/sakashimaa/product-catalog/pkg/utils"
)

type Operation string

const (
	OpGet     Operation = "get"
	OpCreate  Operation = "create"
	OpReplace Operation = "replace"
	OpPatch   Operation = "patch"
	OpDelete  Operation = "delete"
)

// Outcome is what a handler learned from decoding and the service call.
type Outcome struct {
	ID        int64
	Product   *domain.Product
	Submitted map[string]any
	Err       error
}

func mapErrorCode(err error) int {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case utils.IsBreakerOpen(err):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Resolve picks the status code and body for an operation outcome. A nil body
// means the response has no content.
func Resolve(op Operation, out Outcome) (int, any) {
	if out.Err != nil {
		code := mapErrorCode(out.Err)

		switch code {
		case fiber.StatusNotFound:
			return code, fiber.Map{"message": "Product not found"}
		case fiber.StatusBadRequest:
			var verr *domain.ValidationError
			if errors.As(out.Err, &verr) {
				return code, fiber.Map{"error": verr.Fields}
			}
			return code, fiber.Map{"error": out.Err.Error()}
		case fiber.StatusServiceUnavailable:
			return code, fiber.Map{"error": "service temporarily unavailable"}
		default:
			return code, fiber.Map{"error": out.Err.Error()}
		}
	}

	switch op {
	case OpGet:
		return fiber.StatusOK, out.Product
	case OpCreate:
		return fiber.StatusCreated, echo(out.ID, out.Submitted)
	case OpReplace, OpPatch:
		return fiber.StatusOK, echo(out.ID, out.Submitted)
	case OpDelete:
		return fiber.StatusNoContent, nil
	default:
		return fiber.StatusInternalServerError, fiber.Map{"error": "unknown operation"}
	}
}

// echo returns the submitted fields with the identity added under "id".
func echo(id int64, submitted map[string]any) fiber.Map {
	res := make(fiber.Map, len(submitted)+1)
	for k, v := range submitted {
		res[k] = v
	}
	res["id"] = id

	return res
}
