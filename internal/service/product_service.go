package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/product-catalog/internal/domain"
	"github.com/sakashimaa/product-catalog/internal/repository"
	"github.com/sakashimaa/product-catalog/pkg/mylogger"
	outboxDomain "github.com/sakashimaa/product-catalog/pkg/outbox/domain"
	"github.com/sakashimaa/product-catalog/pkg/outbox/worker"
	"go.uber.org/zap"
)

type ProductService interface {
	Create(ctx context.Context, input *domain.CreateProductInput) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Replace(ctx context.Context, id int64, input *domain.ReplaceProductInput) error
	Patch(ctx context.Context, id int64, input *domain.UpdateProductInput) error
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	productRepo repository.ProductRepository
	outboxRepo  worker.OutboxRepository
	pool        *pgxpool.Pool
	logger      *zap.Logger
}

func NewProductService(
	productRepo repository.ProductRepository,
	outboxRepo worker.OutboxRepository,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		pool:        pool,
		logger:      logger,
	}
}

func (s *productService) Create(ctx context.Context, input *domain.CreateProductInput) (int64, error) {
	var id int64

	err := s.inTx(ctx, "Create", func(tx pgx.Tx) error {
		var err error
		id, err = s.productRepo.Create(ctx, tx, input)
		if err != nil {
			return err
		}

		return s.saveEvent(ctx, tx, domain.EventProductCreated, domain.ProductChangedEvent{ProductID: id})
	})
	if err != nil {
		mylogger.Error(ctx, s.logger, "create error", zap.Error(err))
		return 0, fmt.Errorf("error creating product: %w", err)
	}

	mylogger.Info(ctx, s.logger, "Product created", zap.Int64("product_id", id))
	return id, nil
}

func (s *productService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	res, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			mylogger.Warn(ctx, s.logger, "product not found", zap.Int64("product_id", id))
			return nil, err
		}

		mylogger.Error(ctx, s.logger, "error getting product", zap.Error(err))
		return nil, fmt.Errorf("error getting product by id: %w", err)
	}

	return res, nil
}

func (s *productService) Replace(ctx context.Context, id int64, input *domain.ReplaceProductInput) error {
	err := s.inTx(ctx, "Replace", func(tx pgx.Tx) error {
		if err := s.productRepo.Replace(ctx, tx, id, input); err != nil {
			return err
		}

		return s.saveEvent(ctx, tx, domain.EventProductReplaced, domain.ProductChangedEvent{
			ProductID: id,
			Columns:   domain.MutableColumns,
		})
	})

	return s.writeResult(ctx, "replace", id, err)
}

func (s *productService) Patch(ctx context.Context, id int64, input *domain.UpdateProductInput) error {
	assignments := input.Assignments()
	if len(assignments) == 0 {
		return domain.ErrEmptyPatch
	}

	columns := make([]domain.Column, 0, len(assignments))
	for _, a := range assignments {
		columns = append(columns, a.Column)
	}

	err := s.inTx(ctx, "Patch", func(tx pgx.Tx) error {
		if err := s.productRepo.Patch(ctx, tx, id, assignments); err != nil {
			return err
		}

		return s.saveEvent(ctx, tx, domain.EventProductPatched, domain.ProductChangedEvent{
			ProductID: id,
			Columns:   columns,
		})
	})

	return s.writeResult(ctx, "patch", id, err)
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	err := s.inTx(ctx, "Delete", func(tx pgx.Tx) error {
		if err := s.productRepo.DeleteByID(ctx, tx, id); err != nil {
			return err
		}

		return s.saveEvent(ctx, tx, domain.EventProductDeleted, domain.ProductChangedEvent{ProductID: id})
	})

	return s.writeResult(ctx, "delete", id, err)
}

func (s *productService) writeResult(ctx context.Context, op string, id int64, err error) error {
	if err == nil {
		mylogger.Info(ctx, s.logger, "product "+op+" succeeded", zap.Int64("product_id", id))
		return nil
	}

	if errors.Is(err, repository.ErrProductNotFound) || errors.Is(err, domain.ErrInvalidRequest) {
		mylogger.Warn(ctx, s.logger, "product "+op+" rejected", zap.Int64("product_id", id), zap.Error(err))
		return err
	}

	mylogger.Error(ctx, s.logger, "error during product "+op, zap.Int64("product_id", id), zap.Error(err))
	return fmt.Errorf("error during product %s: %w", op, err)
}

func (s *productService) saveEvent(ctx context.Context, tx pgx.Tx, eventType string, payload domain.ProductChangedEvent) error {
	event, err := outboxDomain.NewOutboxEvent(
		domain.AggregateProduct,
		strconv.FormatInt(payload.ProductID, 10),
		eventType,
		domain.ProductEventsTopic,
		map[string]any{
			"event":   eventType,
			"payload": payload,
		},
	)
	if err != nil {
		return fmt.Errorf("event payload marshal error: %w", err)
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}

	return nil
}

// inTx runs fn in a transaction that is committed only when fn succeeds.
func (s *productService) inTx(ctx context.Context, method string, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(cleanupCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(
				cleanupCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
				zap.String("method_name", method),
			)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
