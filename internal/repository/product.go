package repository

import (
	"context"
	"mediastore-checkout/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, productID uint) (*model.Product, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: 7, Title: "The Pragmatic Gopher", Type: model.ProductTypeEbook, Price: 1000, Currency: "USD"},
		{ID: 9, Title: "Concurrency Patterns, Season 1", Type: model.ProductTypePodcast, Price: 2500, Currency: "USD"},
		{ID: 12, Title: "Distributed Systems Notes", Type: model.ProductTypeEbook, Price: 1999, Currency: "USD"},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}
