package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// Guard claims an idempotency key for the lifetime of one placement.
type Guard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type AddressInput struct {
	AddressID *uint  `json:"address_id"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	Notes     string `json:"notes"`
}

type PlaceOrderRequest struct {
	Address        AddressInput
	WhatsAppNumber string
	IdempotencyKey string
}

type Assembler struct {
	DB     *gorm.DB
	Guard  Guard
	Events events.Publisher
}

func NewAssembler(db *gorm.DB, guard Guard, pub events.Publisher) *Assembler {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Assembler{DB: db, Guard: guard, Events: pub}
}

// PlaceOrder turns the cart into an order owned by userID. The address,
// order and items are written in one transaction; the cart is cleared only
// once that transaction has committed.
func (a *Assembler) PlaceOrder(ctx context.Context, c *cart.Cart, req PlaceOrderRequest, userID uint) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.place_order", "user_id", userID)

	if c.Len() == 0 {
		return nil, domain.ErrEmptyCart
	}

	if req.IdempotencyKey != "" && a.Guard != nil {
		key := strconv.FormatUint(uint64(userID), 10) + ":" + req.IdempotencyKey
		ok, err := a.Guard.Acquire(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: idempotency guard: %v", domain.ErrPersistence, err)
		}
		if !ok {
			return nil, domain.ErrDuplicateOrder
		}
		order, err := a.place(ctx, c, req, userID)
		if err != nil {
			if rErr := a.Guard.Release(ctx, key); rErr != nil {
				l.Warn("idempotency_release_failed", "error", rErr)
			}
			return nil, err
		}
		return order, nil
	}

	return a.place(ctx, c, req, userID)
}

func (a *Assembler) place(ctx context.Context, c *cart.Cart, req PlaceOrderRequest, userID uint) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.place_order", "user_id", userID)

	lines, err := c.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID: line.Product.ID,
			Qty:       line.Quantity,
			PriceEach: line.UnitPrice.Round(0).IntPart(),
		})
	}

	var order models.Order
	err = a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addressID, err := resolveAddress(tx, req.Address, userID)
		if err != nil {
			return err
		}

		uid := userID
		order = models.Order{
			UserID:         &uid,
			Status:         domain.OrderStatusNew,
			AddressID:      &addressID,
			WhatsAppNumber: req.WhatsAppNumber,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("%w: create order: %v", domain.ErrPersistence, err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("%w: create order items: %v", domain.ErrPersistence, err)
		}

		order.Total, err = recalcTotal(tx, order.ID)
		return err
	})
	if err != nil {
		l.Warn("place_order_failed", "error", err)
		return nil, err
	}
	order.Items = items

	if err := c.Clear(ctx); err != nil {
		l.Error("cart_clear_failed", "order_id", order.ID, "error", err)
	}

	a.publish(ctx, strconv.FormatUint(uint64(order.ID), 10), map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  userID,
		"total":   order.Total,
		"items":   len(items),
	})

	l.Info("place_order_success", "order_id", order.ID, "total", order.Total)
	return &order, nil
}

func resolveAddress(tx *gorm.DB, in AddressInput, userID uint) (uint, error) {
	if in.AddressID != nil {
		var addr models.Address
		if err := tx.First(&addr, *in.AddressID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, fmt.Errorf("%w: address %d", domain.ErrNotFound, *in.AddressID)
			}
			return 0, fmt.Errorf("%w: load address: %v", domain.ErrPersistence, err)
		}
		if addr.UserID != userID {
			return 0, fmt.Errorf("%w: address %d belongs to another user", domain.ErrForbidden, addr.ID)
		}
		return addr.ID, nil
	}

	fullName := in.FullName
	if fullName == "" {
		var u models.User
		if err := tx.Select("first_name", "last_name").First(&u, userID).Error; err == nil {
			fullName = u.FullName()
		}
	}

	addr := models.Address{
		UserID:   userID,
		FullName: fullName,
		Phone:    in.Phone,
		Line1:    in.Line1,
		Line2:    in.Line2,
		City:     in.City,
		Notes:    in.Notes,
	}
	if err := tx.Create(&addr).Error; err != nil {
		return 0, fmt.Errorf("%w: create address: %v", domain.ErrPersistence, err)
	}
	return addr.ID, nil
}

func (a *Assembler) publish(ctx context.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.Events.PublishEvent(ctx, events.TopicOrder, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", events.TopicOrder, "error", err)
	}
}
