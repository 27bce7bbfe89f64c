package service

import (
	"context"
	"strings"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/model"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"

	"github.com/google/uuid"
)

// ProductService manages tracked product funnels and their webhook tokens.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context) ([]dto.ProductResponse, error)
	FindByToken(ctx context.Context, token string) (*model.TrackedProduct, error)
	SetActive(ctx context.Context, id uint, active bool) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.TrackedProduct{
		Name: req.Name,
		Slug: strings.ToLower(req.Slug),
		// Token is the only credential on the webhook URL, so it has to
		// be unguessable.
		Token:    strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		Network:  "buygoods",
		Notes:    req.Notes,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out, nil
}

func (s *productService) FindByToken(ctx context.Context, token string) (*model.TrackedProduct, error) {
	return s.repo.FindByToken(ctx, token)
}

func (s *productService) SetActive(ctx context.Context, id uint, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func productToResponse(p *model.TrackedProduct) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Token:     p.Token,
		Network:   p.Network,
		Notes:     p.Notes,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
