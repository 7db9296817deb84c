package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/product_hub/internal/events"
	"github.com/Skotchmaster/product_hub/internal/guard"
	"github.com/Skotchmaster/product_hub/internal/logging"
	"github.com/Skotchmaster/product_hub/internal/models"
	"github.com/Skotchmaster/product_hub/internal/repo"
	"github.com/Skotchmaster/product_hub/internal/search"
	"github.com/Skotchmaster/product_hub/internal/util"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  search.Index
	Events events.Publisher
}

// ProductInput carries client-editable fields; nil means "not supplied".
type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return product, err
}

func (s *CatalogService) Create(ctx context.Context, creator *models.User, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	if in.Name == nil {
		return nil, invalid("name", "This field is required.")
	}
	if in.Price == nil {
		return nil, invalid("price", "This field is required.")
	}
	product := &models.Product{CreatorID: creator.ID}
	if err := apply(product, in); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		l.Error("create_product_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return nil, err
	}
	product.Creator = *creator

	s.afterWrite(ctx, events.ProductCreated, creator.ID, product)
	l.Info("create_product_success", "product_id", product.ID)
	return product, nil
}

// Update applies a partial change; only the creator may update.
func (s *CatalogService) Update(ctx context.Context, actor *models.User, id uint, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update")

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.RequireOwnership(actor, product); err != nil {
		l.Warn("update_product_error", "status", 403, "reason", "not the creator", "product_id", id, "user_id", actor.ID)
		return nil, err
	}
	if err := apply(product, in); err != nil {
		return nil, err
	}

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("update_product_error", "status", 404, "reason", "deleted while updating", "product_id", id)
			return nil, ErrNotFound
		}
		l.Error("update_product_error", "status", 500, "reason", "cannot save product", "error", err)
		return nil, err
	}

	s.afterWrite(ctx, events.ProductUpdated, actor.ID, product)
	l.Info("update_product_success", "product_id", product.ID)
	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, actor *models.User, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete")

	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := guard.RequireOwnership(actor, product); err != nil {
		l.Warn("delete_product_error", "status", 403, "reason", "not the creator", "product_id", id, "user_id", actor.ID)
		return err
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		l.Error("delete_product_error", "status", 500, "reason", "cannot delete product", "error", err)
		return err
	}

	if err := s.Index.Delete(ctx, id); err != nil {
		l.Error("search_index_error", "product_id", id, "error", err)
	}
	s.publish(ctx, events.ProductDeleted, actor.ID, id)
	l.Info("delete_product_success", "product_id", id)
	return nil
}

func (s *CatalogService) Search(ctx context.Context, query string, page util.Page) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, invalid("q", "This parameter is required.")
	}

	total, ids, err := s.Index.Search(ctx, query, page.Offset(), page.Size)
	if err != nil {
		logging.FromContext(ctx).Error("search_error", "status", 500, "reason", "search backend failed", "error", err)
		return 0, nil, err
	}
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return 0, nil, err
	}
	return total, products, nil
}

func (s *CatalogService) afterWrite(ctx context.Context, typ string, userID uint, product *models.Product) {
	if err := s.Index.Index(ctx, search.DocumentFrom(product)); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "product_id", product.ID, "error", err)
	}
	s.publish(ctx, typ, userID, product.ID)
}

func (s *CatalogService) publish(ctx context.Context, typ string, userID, productID uint) {
	if s.Events == nil {
		return
	}
	ev := events.Event{Type: typ, UserID: userID, ProductID: productID, OccurredAt: time.Now().UTC()}
	if err := s.Events.Publish(ctx, events.TopicProducts, strconv.FormatUint(uint64(productID), 10), ev); err != nil {
		logging.FromContext(ctx).Error("publish_error", "topic", events.TopicProducts, "type", typ, "error", err)
	}
}

func apply(p *models.Product, in ProductInput) error {
	if in.Name != nil {
		if err := validateProductName(*in.Name); err != nil {
			return err
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return err
		}
		p.Price = *in.Price
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	return nil
}
