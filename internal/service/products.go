// Package service holds caller-side validation in front of the repositories.
// The store assumes validity has been established before persistence; this is
// where that happens.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/caseconductor/ccstore/internal/model"
	"github.com/caseconductor/ccstore/internal/repository"
)

// ProductService validates product input and delegates to the repository.
type ProductService struct {
	products repository.ProductRepository
}

// NewProductService constructs a ProductService.
func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// Create validates and inserts a product.
func (s *ProductService) Create(ctx context.Context, p *model.Product, actor *uuid.UUID) error {
	if p.Name == "" {
		return errors.New("validation: empty product name")
	}
	return s.products.Create(ctx, p, actor)
}

// Save validates and updates a product.
func (s *ProductService) Save(ctx context.Context, p *model.Product, actor *uuid.UUID) error {
	if p.Name == "" {
		return errors.New("validation: empty product name")
	}
	return s.products.Save(ctx, p, actor)
}

// ProductVersionService validates version input, including the soft-delete-
// aware uniqueness of (product, version): a DB unique constraint cannot
// express it, because deleted rows either collide with re-created versions or
// (with deleted_on in the constraint) never collide at all since NULL != NULL.
type ProductVersionService struct {
	versions repository.ProductVersionRepository
}

// NewProductVersionService constructs a ProductVersionService.
func NewProductVersionService(versions repository.ProductVersionRepository) *ProductVersionService {
	return &ProductVersionService{versions: versions}
}

// Create validates and inserts a product version.
func (s *ProductVersionService) Create(ctx context.Context, v *model.ProductVersion, actor *uuid.UUID) error {
	if err := s.validate(ctx, v); err != nil {
		return err
	}
	return s.versions.Create(ctx, v, actor)
}

// Save validates and updates a product version.
func (s *ProductVersionService) Save(ctx context.Context, v *model.ProductVersion, actor *uuid.UUID) error {
	if err := s.validate(ctx, v); err != nil {
		return err
	}
	return s.versions.Save(ctx, v, actor)
}

func (s *ProductVersionService) validate(ctx context.Context, v *model.ProductVersion) error {
	if v.ProductID == uuid.Nil {
		return errors.New("validation: empty product id")
	}
	if v.Version == "" {
		return errors.New("validation: empty version")
	}
	siblings, err := s.versions.ListByProduct(ctx, v.ProductID)
	if err != nil {
		return err
	}
	for _, sib := range siblings {
		if sib.ID != v.ID && sib.Version == v.Version {
			return fmt.Errorf("validation: version %q already exists for this product", v.Version)
		}
	}
	return nil
}
