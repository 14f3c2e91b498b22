package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/product-catalog/internal/domain"
	"github.com/sakashimaa/product-catalog/internal/service"
	"github.com/sakashimaa/product-catalog/pkg/mylogger"
	"github.com/sakashimaa/product-catalog/pkg/utils"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type ProductHandler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *zap.Logger
	cb       *gobreaker.CircuitBreaker
	timeout  time.Duration
}

func NewProductHandler(
	svc service.ProductService,
	cb *gobreaker.CircuitBreaker,
	logger *zap.Logger,
	timeout time.Duration,
) *ProductHandler {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}

	return &ProductHandler{
		service:  svc,
		validate: utils.NewValidator(),
		logger:   logger,
		cb:       cb,
		timeout:  timeout,
	}
}

func (h *ProductHandler) FindByID(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	id, err := parseID(c)
	if err != nil {
		return h.respond(ctx, c, OpGet, Outcome{Err: err})
	}

	product, err := utils.ExecuteWithBreaker(h.cb, func() (*domain.Product, error) {
		return h.service.FindByID(ctx, id)
	})

	return h.respond(ctx, c, OpGet, Outcome{ID: id, Product: product, Err: err})
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	body, err := parseBody(c)
	if err != nil {
		return h.respond(ctx, c, OpCreate, Outcome{Err: err})
	}

	input, err := domain.DecodeCreate(body)
	if err != nil {
		return h.respond(ctx, c, OpCreate, Outcome{Err: err})
	}

	if err := h.validateStruct(input); err != nil {
		return h.respond(ctx, c, OpCreate, Outcome{Err: err})
	}

	id, err := utils.ExecuteWithBreaker(h.cb, func() (int64, error) {
		return h.service.Create(ctx, input)
	})

	return h.respond(ctx, c, OpCreate, Outcome{ID: id, Submitted: body, Err: err})
}

func (h *ProductHandler) Replace(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	id, err := parseID(c)
	if err != nil {
		return h.respond(ctx, c, OpReplace, Outcome{Err: err})
	}

	body, err := parseBody(c)
	if err != nil {
		return h.respond(ctx, c, OpReplace, Outcome{ID: id, Err: err})
	}

	input, err := domain.DecodeReplace(body)
	if err != nil {
		return h.respond(ctx, c, OpReplace, Outcome{ID: id, Err: err})
	}

	if err := h.validateStruct(input); err != nil {
		return h.respond(ctx, c, OpReplace, Outcome{ID: id, Err: err})
	}

	_, err = utils.ExecuteWithBreaker(h.cb, func() (struct{}, error) {
		return struct{}{}, h.service.Replace(ctx, id, input)
	})

	return h.respond(ctx, c, OpReplace, Outcome{ID: id, Submitted: body, Err: err})
}

func (h *ProductHandler) Patch(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	id, err := parseID(c)
	if err != nil {
		return h.respond(ctx, c, OpPatch, Outcome{Err: err})
	}

	body, err := parseBody(c)
	if err != nil {
		return h.respond(ctx, c, OpPatch, Outcome{ID: id, Err: err})
	}

	input, err := domain.DecodePatch(body)
	if err != nil {
		return h.respond(ctx, c, OpPatch, Outcome{ID: id, Err: err})
	}

	if err := h.validateStruct(input); err != nil {
		return h.respond(ctx, c, OpPatch, Outcome{ID: id, Err: err})
	}

	_, err = utils.ExecuteWithBreaker(h.cb, func() (struct{}, error) {
		return struct{}{}, h.service.Patch(ctx, id, input)
	})

	return h.respond(ctx, c, OpPatch, Outcome{ID: id, Submitted: body, Err: err})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	id, err := parseID(c)
	if err != nil {
		return h.respond(ctx, c, OpDelete, Outcome{Err: err})
	}

	_, err = utils.ExecuteWithBreaker(h.cb, func() (struct{}, error) {
		return struct{}{}, h.service.Delete(ctx, id)
	})

	return h.respond(ctx, c, OpDelete, Outcome{ID: id, Err: err})
}

func (h *ProductHandler) validateStruct(input any) error {
	if err := h.validate.Struct(input); err != nil {
		return domain.NewValidationError(utils.FormatValidationError(err))
	}

	return nil
}

func (h *ProductHandler) respond(ctx context.Context, c *fiber.Ctx, op Operation, out Outcome) error {
	code, body := Resolve(op, out)

	fields := []zap.Field{
		zap.String("operation", string(op)),
		zap.Int("http_status", code),
	}
	if out.ID != 0 {
		fields = append(fields, zap.Int64("product_id", out.ID))
	}

	switch {
	case code >= fiber.StatusInternalServerError:
		mylogger.Error(ctx, h.logger, "product request failed", append(fields, zap.Error(out.Err))...)
	case code >= fiber.StatusBadRequest:
		mylogger.Warn(ctx, h.logger, "product request rejected", append(fields, zap.Error(out.Err))...)
	default:
		mylogger.Info(ctx, h.logger, "product request succeeded", fields...)
	}

	if body == nil {
		return c.Status(code).Send(nil)
	}

	return c.Status(code).JSON(body)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}

	return id, nil
}

func parseBody(c *fiber.Ctx) (map[string]any, error) {
	var body map[string]any

	if err := c.BodyParser(&body); err != nil {
		return nil, domain.NewValidationError(map[string]string{
			"body": "invalid request body",
		})
	}

	return body, nil
}
