package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AccountService struct {
	Repo *repo.GormRepo
}

func (s *AccountService) Addresses(ctx context.Context, userID uint) ([]models.Address, error) {
	return s.Repo.ListAddresses(ctx, userID)
}

func (s *AccountService) CreateAddress(ctx context.Context, userID uint, req transport.AddressRequest) (*models.Address, error) {
	a := models.Address{
		UserID:   userID,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
		Line1:    strings.TrimSpace(req.Line1),
		Line2:    strings.TrimSpace(req.Line2),
		City:     strings.TrimSpace(req.City),
		Notes:    strings.TrimSpace(req.Notes),
	}
	if a.FullName == "" {
		return nil, fmt.Errorf("%w: full_name is required", domain.ErrValidation)
	}
	if err := s.Repo.CreateAddress(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AccountService) DeleteAddress(ctx context.Context, userID, id uint) error {
	return notFound(s.Repo.DeleteAddress(ctx, userID, id), "address")
}

type OrderService struct {
	Repo      *repo.GormRepo
	Assembler *checkout.Assembler
}

// List returns the caller's orders, or every order for staff.
func (s *OrderService) List(ctx context.Context, userID uint, staff bool, offset, limit int) (int64, []models.Order, error) {
	var owner *uint
	if !staff {
		owner = &userID
	}
	return s.Repo.ListOrders(ctx, owner, offset, limit)
}

// Get hides other users' orders behind ErrNotFound.
func (s *OrderService) Get(ctx context.Context, id, userID uint, staff bool) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if !staff && (o.UserID == nil || *o.UserID != userID) {
		return nil, fmt.Errorf("%w: order", domain.ErrNotFound)
	}
	return o, nil
}

func (s *OrderService) SetStatus(ctx context.Context, id uint, status domain.OrderStatus) (*models.Order, error) {
	if err := s.Assembler.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, 0, true)
}

func (s *OrderService) UpdateItemQty(ctx context.Context, orderID, itemID uint, qty int) (*models.Order, error) {
	if _, err := s.Assembler.UpdateItemQty(ctx, orderID, itemID, qty); err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID, 0, true)
}

func (s *OrderService) Delete(ctx context.Context, id uint) error {
	return s.Assembler.DeleteOrder(ctx, id)
}
