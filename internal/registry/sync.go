package registry

import (
	"context"
	"time"

	"freshops/internal/config"
	"freshops/internal/storage"
)

type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

func (s *SyncService) SyncProducts(ctx context.Context) (int, error) {
	products, err := s.client.GetProductsAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.UpsertProducts(products); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("registry.last_product_sync", time.Now().UTC().Format(time.RFC3339))
	return len(products), nil
}

func (s *SyncService) SyncCustomers(ctx context.Context) (int, error) {
	customers, err := s.client.GetCustomersAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.UpsertCustomers(customers); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("registry.last_customer_sync", time.Now().UTC().Format(time.RFC3339))
	return len(customers), nil
}

func (s *SyncService) SyncAll(ctx context.Context) (products, customers int, err error) {
	products, err = s.SyncProducts(ctx)
	if err != nil {
		return 0, 0, err
	}
	customers, err = s.SyncCustomers(ctx)
	if err != nil {
		return products, 0, err
	}
	return products, customers, nil
}
