package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testdb"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to, subject, body})
	return f.err
}

func TestSubscribe_WelcomeOnce(t *testing.T) {
	m := &fakeMailer{}
	svc := &ContentService{Repo: repo.New(testdb.New(t)), Mailer: m}
	ctx := context.Background()

	created, err := svc.Subscribe(ctx, transport.NewsletterRequest{Email: "Fan@Example.com"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Subscribe(ctx, transport.NewsletterRequest{Email: "fan@example.com"})
	require.NoError(t, err)
	assert.False(t, created)

	require.Len(t, m.sent, 1)
	assert.Equal(t, "fan@example.com", m.sent[0].to)
	assert.Equal(t, "Welcome to "+models.DefaultSiteName, m.sent[0].subject)

	_, err = svc.Subscribe(ctx, transport.NewsletterRequest{Email: "nope"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubscribe_MailFailureKeepsSubscription(t *testing.T) {
	svc := &ContentService{Repo: repo.New(testdb.New(t)), Mailer: &fakeMailer{err: errors.New("smtp down")}}
	created, err := svc.Subscribe(context.Background(), transport.NewsletterRequest{Email: "a@b.co"})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestTestimonialsAndContact(t *testing.T) {
	svc := &ContentService{Repo: repo.New(testdb.New(t))}
	ctx := context.Background()

	_, err := svc.CreateTestimonial(ctx, transport.TestimonialRequest{Name: "Ann", Message: "Great bass"})
	require.NoError(t, err)
	_, err = svc.CreateTestimonial(ctx, transport.TestimonialRequest{Name: "Ann"})
	require.ErrorIs(t, err, domain.ErrValidation)

	list, err := svc.Testimonials(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Contact(ctx, transport.ContactRequest{Name: "Bob", Email: "bob@example.com", Message: "hi"})
	require.NoError(t, err)
	_, err = svc.Contact(ctx, transport.ContactRequest{Name: "Bob", Email: "bad", Message: "hi"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSiteConfig(t *testing.T) {
	svc := &ContentService{Repo: repo.New(testdb.New(t))}
	ctx := context.Background()

	cfg, err := svc.SiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSiteName, cfg.SiteName)

	name := "Loud Shop"
	cfg, err = svc.UpdateSiteConfig(ctx, transport.SiteConfigRequest{SiteName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Loud Shop", cfg.SiteName)
	assert.Equal(t, models.DefaultWhatsApp, cfg.WhatsAppNumber)

	bad := "nope"
	_, err = svc.UpdateSiteConfig(ctx, transport.SiteConfigRequest{SupportEmail: &bad})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrders_OwnerOnly(t *testing.T) {
	db := testdb.New(t)
	r := repo.New(db)
	svc := &OrderService{Repo: r, Assembler: checkout.NewAssembler(db, nil, nil)}
	ctx := context.Background()

	owner := testdb.SeedUser(t, db, "owner", false)
	other := testdb.SeedUser(t, db, "other", false)
	cat := testdb.SeedCategory(t, db, "Amps")
	p := testdb.SeedProduct(t, db, cat.ID, "Amp", 500)

	o := models.Order{UserID: &owner.ID, Status: domain.OrderStatusNew, Items: []models.OrderItem{{ProductID: p.ID, Qty: 2, PriceEach: 500}}}
	require.NoError(t, db.Create(&o).Error)

	_, err := svc.Get(ctx, o.ID, other.ID, false)
	require.ErrorIs(t, err, domain.ErrNotFound)
	got, err := svc.Get(ctx, o.ID, owner.ID, false)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	total, _, err := svc.List(ctx, other.ID, false, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	total, _, err = svc.List(ctx, other.ID, true, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	got, err = svc.UpdateItemQty(ctx, o.ID, o.Items[0].ID, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1500, got.Total)

	got, err = svc.SetStatus(ctx, o.ID, domain.OrderStatusSent)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusSent, got.Status)

	require.NoError(t, svc.Delete(ctx, o.ID))
	_, err = svc.Get(ctx, o.ID, 0, true)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddresses(t *testing.T) {
	db := testdb.New(t)
	svc := &AccountService{Repo: repo.New(db)}
	ctx := context.Background()

	a, err := svc.CreateAddress(ctx, 1, transport.AddressRequest{FullName: "Jane", City: "Nairobi"})
	require.NoError(t, err)
	_, err = svc.CreateAddress(ctx, 1, transport.AddressRequest{})
	require.ErrorIs(t, err, domain.ErrValidation)

	require.ErrorIs(t, svc.DeleteAddress(ctx, 2, a.ID), domain.ErrNotFound)
	require.NoError(t, svc.DeleteAddress(ctx, 1, a.ID))
	list, err := svc.Addresses(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}
