package service

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CatalogService manages products, categories and announcements
type CatalogService struct {
	products      ProductRepository
	categories    CategoryRepository
	announcements AnnouncementRepository
	logger        *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo Repository) *CatalogService {
	return &CatalogService{
		products:      repo,
		categories:    repo,
		announcements: repo,
		logger:        util.GetLogger(),
	}
}

func (s *CatalogService) mutated(entity, op string, id int64) {
	util.CatalogMutationsTotal.WithLabelValues(entity, op).Inc()
	s.logger.Info("Catalog updated", zap.String("entity", entity), zap.String("op", op), zap.Int64("id", id))
}

// ListProducts returns one page of products
func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) (models.Page[models.Product], error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()
	span.SetAttributes(attribute.String("search", filter.Search), attribute.Int("page", filter.Page))

	rows, total, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return models.Page[models.Product]{}, apperr.Internal(err)
	}
	return models.NewPage(rows, total, filter.ListOptions), nil
}

// GetProduct returns a product or NotFound
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if p == nil {
		return nil, apperr.NotFound("product")
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in models.ProductInput) (_ *models.Product, err error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer func() { util.EndSpan(span, err) }()

	p, err := s.products.CreateProduct(ctx, in)
	if err != nil {
		return nil, storeError(err, "product", "categoryId")
	}
	s.mutated("product", "create", p.ID)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (_ *models.Product, err error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer func() { util.EndSpan(span, err) }()

	p, err := s.products.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "product", "categoryId")
	}
	if p == nil {
		return nil, apperr.NotFound("product")
	}
	s.mutated("product", "update", id)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	deleted, err := s.products.DeleteProduct(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("product")
	}
	s.mutated("product", "delete", id)
	return nil
}

// ListCategories returns every category in display order
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rows, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	c, err := s.categories.CreateCategory(ctx, in)
	if err != nil {
		return nil, storeError(err, "a category with this slug", "slug")
	}
	s.mutated("category", "create", c.ID)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	c, err := s.categories.UpdateCategory(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "a category with this slug", "slug")
	}
	if c == nil {
		return nil, apperr.NotFound("category")
	}
	s.mutated("category", "update", id)
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	deleted, err := s.categories.DeleteCategory(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("category")
	}
	s.mutated("category", "delete", id)
	return nil
}

// ListAnnouncements returns one page of announcements for the back office
func (s *CatalogService) ListAnnouncements(ctx context.Context, filter models.AnnouncementFilter) (models.Page[models.Announcement], error) {
	rows, total, err := s.announcements.ListAnnouncements(ctx, filter)
	if err != nil {
		return models.Page[models.Announcement]{}, apperr.Internal(err)
	}
	return models.NewPage(rows, total, filter.ListOptions), nil
}

// ActiveAnnouncements returns the storefront carousel slides
func (s *CatalogService) ActiveAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	rows, err := s.announcements.ListActiveAnnouncements(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rows, nil
}

func (s *CatalogService) CreateAnnouncement(ctx context.Context, in models.AnnouncementInput) (*models.Announcement, error) {
	a, err := s.announcements.CreateAnnouncement(ctx, in)
	if err != nil {
		return nil, storeError(err, "announcement", "id")
	}
	s.mutated("announcement", "create", a.ID)
	return a, nil
}

// UpdateAnnouncement applies patch. The button text and link must stay a
// pair after the patch is applied.
func (s *CatalogService) UpdateAnnouncement(ctx context.Context, id int64, patch models.AnnouncementPatch) (*models.Announcement, error) {
	current, err := s.announcements.GetAnnouncement(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if current == nil {
		return nil, apperr.NotFound("announcement")
	}
	if err := checkButtonPair(current, patch); err != nil {
		return nil, err
	}

	a, err := s.announcements.UpdateAnnouncement(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "announcement", "id")
	}
	if a == nil {
		return nil, apperr.NotFound("announcement")
	}
	s.mutated("announcement", "update", id)
	return a, nil
}

func checkButtonPair(current *models.Announcement, patch models.AnnouncementPatch) error {
	text := current.ButtonText != nil && *current.ButtonText != ""
	link := current.ButtonLink != nil && *current.ButtonLink != ""
	if patch.ButtonText != nil {
		text = *patch.ButtonText != ""
	}
	if patch.ButtonLink != nil {
		link = *patch.ButtonLink != ""
	}
	switch {
	case text && !link:
		return apperr.Invalid("buttonLink", "buttonLink is required when buttonText is set")
	case link && !text:
		return apperr.Invalid("buttonText", "buttonText is required when buttonLink is set")
	}
	return nil
}

func (s *CatalogService) DeleteAnnouncement(ctx context.Context, id int64) error {
	deleted, err := s.announcements.DeleteAnnouncement(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("announcement")
	}
	s.mutated("announcement", "delete", id)
	return nil
}
