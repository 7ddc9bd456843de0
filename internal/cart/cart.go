package cart

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/session"
)

// SessionKey is where the cart lives inside the visitor's session.
const SessionKey = "cart"

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 1000

// Line is one product's quantity plus the unit price captured when it was
// first added. Price serializes as a JSON string.
type Line struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Item struct {
	Product   models.Product  `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Catalog interface {
	ProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
}

type Cart struct {
	sess    session.Session
	catalog Catalog
	lines   map[string]Line
}

// Load reads the cart from sess, starting empty when nothing is stored.
func Load(ctx context.Context, sess session.Session, catalog Catalog) (*Cart, error) {
	lines := make(map[string]Line)
	if _, err := sess.Get(ctx, SessionKey, &lines); err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if lines == nil {
		lines = make(map[string]Line)
	}
	return &Cart{sess: sess, catalog: catalog, lines: lines}, nil
}

func key(productID uint) string {
	return strconv.FormatUint(uint64(productID), 10)
}

// Add changes the quantity of product by qty, or sets it to qty when
// override is true. A resulting quantity of zero or less drops the line;
// one above MaxLineQuantity is rejected and leaves the cart unchanged.
func (c *Cart) Add(ctx context.Context, product models.Product, qty int, override bool) error {
	if qty > MaxLineQuantity {
		return fmt.Errorf("%w: quantity above %d", domain.ErrValidation, MaxLineQuantity)
	}
	k := key(product.ID)
	line, ok := c.lines[k]
	if !ok {
		line = Line{Price: decimal.NewFromInt(product.Price)}
	}

	if override {
		line.Quantity = qty
	} else {
		line.Quantity += qty
	}
	if line.Quantity > MaxLineQuantity {
		return fmt.Errorf("%w: quantity above %d", domain.ErrValidation, MaxLineQuantity)
	}

	if line.Quantity <= 0 {
		delete(c.lines, k)
	} else {
		c.lines[k] = line
	}
	return c.save(ctx)
}

func (c *Cart) Remove(ctx context.Context, productID uint) error {
	k := key(productID)
	if _, ok := c.lines[k]; !ok {
		return nil
	}
	delete(c.lines, k)
	return c.save(ctx)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.lines = make(map[string]Line)
	return c.save(ctx)
}

func (c *Cart) save(ctx context.Context) error {
	if err := c.sess.Set(ctx, SessionKey, c.lines); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Items resolves every line against the catalog in one lookup. Lines whose
// product no longer exists are left out. Items are ordered by product id.
func (c *Cart) Items(ctx context.Context) ([]Item, error) {
	if len(c.lines) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(c.lines))
	for k := range c.lines {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}

	products, err := c.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("cart products: %w", err)
	}

	items := make([]Item, 0, len(products))
	for _, p := range products {
		line, ok := c.lines[key(p.ID)]
		if !ok {
			continue
		}
		items = append(items, Item{
			Product:   p,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
			LineTotal: line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Product.ID < items[j].Product.ID })
	return items, nil
}

// TotalCount is the sum of quantities over every stored line.
func (c *Cart) TotalCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice sums snapshot prices of lines whose product still exists.
func (c *Cart) TotalPrice(ctx context.Context) (decimal.Decimal, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return Sum(items), nil
}

func Sum(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	return total
}

// Len is the number of distinct lines.
func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) line(productID uint) (Line, bool) {
	l, ok := c.lines[key(productID)]
	return l, ok
}
