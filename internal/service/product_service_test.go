package service_test

import (
	"context"
	"strings"
	"time"

	"github.com/sakashimaa/product-catalog/internal/domain"
	"github.com/sakashimaa/product-catalog/internal/repository"
	"github.com/shopspring/decimal"
)

func ptr[T any](v T) *T {
	return &v
}

func (s *IntegrationTestSuite) newLamp() *domain.CreateProductInput {
	date, err := domain.ParseDate("2025-03-02")
	s.Require().NoError(err)

	return &domain.CreateProductInput{
		Name:             ptr("Lamp"),
		Availability:     ptr(domain.InStock),
		Price:            ptr(decimal.RequireFromString("19.99")),
		ShortDescription: ptr("desk lamp"),
		DateCreated:      &date,
	}
}

func (s *IntegrationTestSuite) countOutbox(eventType string) int {
	var n int
	err := s.DbPool.QueryRow(s.Ctx, "SELECT COUNT(*) FROM outbox WHERE event_type = $1", eventType).Scan(&n)
	s.Require().NoError(err)

	return n
}

func (s *IntegrationTestSuite) TestCreate_RoundTrip() {
	input := s.newLamp()

	id, err := s.ProductService.Create(s.Ctx, input)
	s.Require().NoError(err)
	s.Require().NotZero(id)

	product, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal(id, product.ID)
	s.Require().Equal("Lamp", product.Name)
	s.Require().Equal(domain.InStock, product.Availability)
	s.Require().True(decimal.RequireFromString("19.99").Equal(product.Price), product.Price.String())
	s.Require().Equal("desk lamp", product.ShortDescription)
	s.Require().Equal("2025-03-02", product.DateCreated.String())

	s.Require().Equal(1, s.countOutbox(domain.EventProductCreated))
}

func (s *IntegrationTestSuite) TestCreate_UnicodeAndZeroPrice() {
	input := s.newLamp()
	input.Name = ptr("黒波・混沌 Edition")
	input.ShortDescription = ptr("")
	input.Price = ptr(decimal.Zero)

	id, err := s.ProductService.Create(s.Ctx, input)
	s.Require().NoError(err)

	product, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal("黒波・混沌 Edition", product.Name)
	s.Require().Empty(product.ShortDescription)
	s.Require().True(product.Price.IsZero())
}

func (s *IntegrationTestSuite) TestReplace_OverwritesMutableColumnsOnly() {
	id, err := s.ProductService.Create(s.Ctx, s.newLamp())
	s.Require().NoError(err)

	err = s.ProductService.Replace(s.Ctx, id, &domain.ReplaceProductInput{
		Name:             ptr("Floor lamp"),
		Availability:     ptr(domain.OutOfStock),
		Price:            ptr(decimal.RequireFromString("120.50")),
		ShortDescription: ptr("tall"),
	})
	s.Require().NoError(err)

	product, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal("Floor lamp", product.Name)
	s.Require().Equal(domain.OutOfStock, product.Availability)
	s.Require().True(decimal.RequireFromString("120.5").Equal(product.Price))
	s.Require().Equal("tall", product.ShortDescription)
	s.Require().Equal("2025-03-02", product.DateCreated.String())

	s.Require().Equal(1, s.countOutbox(domain.EventProductReplaced))
}

func (s *IntegrationTestSuite) TestPatch_ChangesOnlyGivenColumns() {
	id, err := s.ProductService.Create(s.Ctx, s.newLamp())
	s.Require().NoError(err)

	err = s.ProductService.Patch(s.Ctx, id, &domain.UpdateProductInput{
		Price: ptr(decimal.NewFromInt(50)),
	})
	s.Require().NoError(err)

	product, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().True(decimal.NewFromInt(50).Equal(product.Price))
	s.Require().Equal("Lamp", product.Name)
	s.Require().Equal(domain.InStock, product.Availability)
	s.Require().Equal("desk lamp", product.ShortDescription)
	s.Require().Equal("2025-03-02", product.DateCreated.String())

	s.Require().Equal(1, s.countOutbox(domain.EventProductPatched))
}

func (s *IntegrationTestSuite) TestPatch_EmptyIsRejected() {
	id, err := s.ProductService.Create(s.Ctx, s.newLamp())
	s.Require().NoError(err)

	err = s.ProductService.Patch(s.Ctx, id, &domain.UpdateProductInput{})
	s.Require().ErrorIs(err, domain.ErrEmptyPatch)
	s.Require().Zero(s.countOutbox(domain.EventProductPatched))
}

func (s *IntegrationTestSuite) TestMissingProduct_UniformNotFound() {
	const missing = int64(999999)

	_, err := s.ProductService.FindByID(s.Ctx, missing)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)

	err = s.ProductService.Replace(s.Ctx, missing, &domain.ReplaceProductInput{
		Name:             ptr("a"),
		Availability:     ptr(domain.InStock),
		Price:            ptr(decimal.NewFromInt(1)),
		ShortDescription: ptr("b"),
	})
	s.Require().ErrorIs(err, repository.ErrProductNotFound)

	err = s.ProductService.Patch(s.Ctx, missing, &domain.UpdateProductInput{Name: ptr("a")})
	s.Require().ErrorIs(err, repository.ErrProductNotFound)

	err = s.ProductService.Delete(s.Ctx, missing)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)

	var n int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, "SELECT COUNT(*) FROM outbox").Scan(&n))
	s.Require().Zero(n)
}

func (s *IntegrationTestSuite) TestDelete_IsTerminal() {
	id, err := s.ProductService.Create(s.Ctx, s.newLamp())
	s.Require().NoError(err)

	s.Require().NoError(s.ProductService.Delete(s.Ctx, id))

	_, err = s.ProductService.FindByID(s.Ctx, id)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)

	err = s.ProductService.Delete(s.Ctx, id)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)

	s.Require().Equal(1, s.countOutbox(domain.EventProductDeleted))
}

func (s *IntegrationTestSuite) TestInjectionIsStoredVerbatim() {
	payload := "x'); DROP TABLE product;--"

	input := s.newLamp()
	input.Name = ptr(payload)

	id, err := s.ProductService.Create(s.Ctx, input)
	s.Require().NoError(err)

	err = s.ProductService.Patch(s.Ctx, id, &domain.UpdateProductInput{ShortDescription: ptr(payload)})
	s.Require().NoError(err)

	product, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal(payload, product.Name)
	s.Require().Equal(payload, product.ShortDescription)

	var n int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, "SELECT COUNT(*) FROM product").Scan(&n))
	s.Require().Equal(1, n)
}

func (s *IntegrationTestSuite) TestFindByID_ContextTimeout() {
	id, err := s.ProductService.Create(s.Ctx, s.newLamp())
	s.Require().NoError(err)

	timeoutCtx, cancel := context.WithTimeout(s.Ctx, time.Microsecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	product, err := s.ProductService.FindByID(timeoutCtx, id)
	s.Require().Error(err)
	s.Require().ErrorIs(err, context.DeadlineExceeded)
	s.Require().Nil(product)
}

func (s *IntegrationTestSuite) TestCreate_StoreRejectionIsInvalidRequest() {
	tests := []struct {
		name  string
		price string
	}{
		{name: "numeric overflow", price: "12345678901.23"},
		{name: "check violation", price: "-1"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			input := s.newLamp()
			input.Price = ptr(decimal.RequireFromString(tt.price))

			_, err := s.ProductService.Create(s.Ctx, input)
			s.Require().ErrorIs(err, domain.ErrInvalidRequest)
			s.Require().Equal(1, strings.Count(err.Error(), "creating product"), err.Error())
			s.Require().Contains(err.Error(), "failed to insert product row")
		})
	}

	s.Require().Zero(s.countOutbox(domain.EventProductCreated))
}

func (s *IntegrationTestSuite) TestPatch_StoreRejectionIsInvalidRequest() {
	id, err := s.ProductService.Create(s.Ctx, s.newLamp())
	s.Require().NoError(err)

	err = s.ProductService.Patch(s.Ctx, id, &domain.UpdateProductInput{
		Price: ptr(decimal.RequireFromString("12345678901.23")),
	})
	s.Require().ErrorIs(err, domain.ErrInvalidRequest)
	s.Require().Contains(err.Error(), "failed to merge product row")
	s.Require().Zero(s.countOutbox(domain.EventProductPatched))
}
