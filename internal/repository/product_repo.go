package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/product-catalog/internal/domain"
	"github.com/sakashimaa/product-catalog/pkg/mylogger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ProductRepository interface {
	Create(ctx context.Context, tx pgx.Tx, input *domain.CreateProductInput) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Replace(ctx context.Context, tx pgx.Tx, id int64, input *domain.ReplaceProductInput) error
	Patch(ctx context.Context, tx pgx.Tx, id int64, assignments []domain.Assignment) error
	DeleteByID(ctx context.Context, tx pgx.Tx, id int64) error
}

type productRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewProductRepository(pool *pgxpool.Pool, logger *zap.Logger) ProductRepository {
	return &productRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/product_repo"),
	}
}

func (r *productRepo) Create(ctx context.Context, tx pgx.Tx, input *domain.CreateProductInput) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	st := InsertStatement(input)

	var id int64
	if err := tx.QueryRow(ctx, st.SQL, st.Args...).Scan(&id); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error creating product",
			zap.Error(err),
		)

		return 0, fmt.Errorf("failed to insert product row: %w", storeError(err))
	}

	span.SetAttributes(attribute.Int64("id", id))

	return id, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	st := SelectByIDStatement(id)

	var (
		res          domain.Product
		availability string
		price        pgtype.Numeric
		dateCreated  pgtype.Date
	)

	if err := r.pool.QueryRow(ctx, st.SQL, st.Args...).
		Scan(&res.ID, &res.Name, &availability, &price, &res.ShortDescription, &dateCreated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error get by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to select product row: %w", err)
	}

	res.Availability = domain.Availability(availability)
	res.Price = numericToDecimal(price)
	res.DateCreated = domain.Date{Time: dateCreated.Time}

	return &res, nil
}

func (r *productRepo) Replace(ctx context.Context, tx pgx.Tx, id int64, input *domain.ReplaceProductInput) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Replace")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	if err := r.execAffecting(ctx, tx, ReplaceStatement(id, input)); err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Failed to replace product",
				zap.Int64("id", id),
				zap.Error(err),
			)

			return fmt.Errorf("failed to overwrite product row: %w", storeError(err))
		}

		return err
	}

	return nil
}

func (r *productRepo) Patch(ctx context.Context, tx pgx.Tx, id int64, assignments []domain.Assignment) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Patch")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Int("columns", len(assignments)),
	)

	st, err := PatchStatement(id, assignments)
	if err != nil {
		return err
	}

	if err := r.execAffecting(ctx, tx, st); err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Failed to patch product",
				zap.Int64("id", id),
				zap.Error(err),
			)

			return fmt.Errorf("failed to merge product row: %w", storeError(err))
		}

		return err
	}

	return nil
}

func (r *productRepo) DeleteByID(ctx context.Context, tx pgx.Tx, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	if err := r.execAffecting(ctx, tx, DeleteStatement(id)); err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Error deleting product by id",
				zap.Int64("id", id),
				zap.Error(err),
			)

			return fmt.Errorf("failed to remove product row: %w", err)
		}

		return err
	}

	return nil
}

// execAffecting runs a write that must touch at least one row.
func (r *productRepo) execAffecting(ctx context.Context, q Querier, st Statement) error {
	commandTag, err := q.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		return err
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// storeError marks values the product table refuses as invalid requests, so
// they are answered with 400 and not counted by the circuit breaker.
func storeError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgNumericOutOfRange, pgCheckViolation:
		return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, pgErr.Message)
	default:
		return err
	}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}
