package product

import "context"

type Service interface {
	List(ctx context.Context, category string) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, category string) ([]*Product, error) {
	return s.repo.List(ctx, category)
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}
