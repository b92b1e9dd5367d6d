package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-frontdesk/backend"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

func sampleInvoice(number string) *models.InvoiceData {
	return &models.InvoiceData{
		InvoiceNumber: number,
		Date:          at(5, 11, 0),
		CustomerName:  "Ann",
		CustomerEmail: "ann@example.com",
		Products: []models.InvoiceProduct{
			{Name: "Room charge", UnitPrice: 90000, Quantity: 1},
			{Name: "Water", UnitPrice: 10000, Quantity: 2},
		},
		AdditionalCharges: 5000,
		Discount:          15000,
		PaymentMethod:     "cash",
		PaymentStatus:     models.PaymentPaid,
	}
}

// sequence hands out the given numbers in order.
func sequence(numbers ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(numbers) {
			return "", errors.New("sequence exhausted")
		}
		n := numbers[i]
		i++
		return n, nil
	}
}

func TestInvoiceService_CreateRecalculatesTotal(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	in := sampleInvoice("123456")
	in.TotalAmount = 1
	inv, err := fx.local.CreateInvoice(ctx, in)
	require.NoError(t, err)

	assert.NotZero(t, inv.ID)
	assert.Equal(t, "123456", inv.InvoiceNumber)
	assert.Equal(t, int64(100000), inv.TotalAmount)

	got, err := fx.local.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), got.TotalAmount)
	require.Len(t, got.Products, 2)
	assert.Equal(t, "Water", got.Products[1].Name)
}

func TestInvoiceService_CreateRetriesOnNumberCollision(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	svc := fx.local.InvoiceService

	_, err := svc.CreateInvoice(ctx, sampleInvoice("111111"))
	require.NoError(t, err)

	svc.NewNumber = sequence("111111", "222222")
	inv, err := svc.CreateInvoice(ctx, sampleInvoice("111111"))
	require.NoError(t, err)
	assert.Equal(t, "222222", inv.InvoiceNumber)

	var count int64
	require.NoError(t, fx.db.Model(&models.InvoiceData{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestInvoiceService_CreateGeneratesMissingNumber(t *testing.T) {
	fx := newFixture(t)
	svc := fx.local.InvoiceService
	svc.NewNumber = sequence("654321")

	inv, err := svc.CreateInvoice(context.Background(), sampleInvoice(""))
	require.NoError(t, err)
	assert.Equal(t, "654321", inv.InvoiceNumber)
}

func TestInvoiceService_CreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	svc := fx.local.InvoiceService

	_, err := svc.CreateInvoice(ctx, sampleInvoice("111111"))
	require.NoError(t, err)

	svc.NewNumber = func() (string, error) { return "111111", nil }
	_, err = svc.CreateInvoice(ctx, sampleInvoice("111111"))
	assert.ErrorIs(t, err, ErrInvoiceNumberExhausted)
}

func TestInvoiceService_Update(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.local.CreateInvoice(ctx, sampleInvoice("123456"))
	require.NoError(t, err)

	edit := sampleInvoice("not-a-number")
	edit.Products = []models.InvoiceProduct{{Name: "Room charge", UnitPrice: 120000, Quantity: 1}}
	edit.Discount = 0
	edit.AdditionalCharges = 0
	edit.PaymentStatus = ""

	updated, err := fx.local.UpdateInvoice(ctx, created.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "123456", updated.InvoiceNumber)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, int64(120000), updated.TotalAmount)

	edit.InvoiceNumber = "777777"
	updated, err = fx.local.UpdateInvoice(ctx, created.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, "777777", updated.InvoiceNumber)

	_, err = fx.local.UpdateInvoice(ctx, 9999, edit)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestInvoiceService_StatusAndDelete(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.local.CreateInvoice(ctx, sampleInvoice("123456"))
	require.NoError(t, err)

	inv, err := fx.local.UpdateInvoiceStatus(ctx, created.ID, models.PaymentVoid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVoid, inv.PaymentStatus)

	got, err := fx.local.GetInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVoid, got.PaymentStatus)

	require.NoError(t, fx.local.DeleteInvoice(ctx, created.ID))
	_, err = fx.local.GetInvoice(ctx, created.ID)
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.ErrorIs(t, fx.local.DeleteInvoice(ctx, created.ID), backend.ErrNotFound)
}

func TestInvoiceService_Email(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.local.CreateInvoice(ctx, sampleInvoice("123456"))
	require.NoError(t, err)

	// SMTP is unconfigured in tests so delivery is logged only.
	assert.NoError(t, fx.local.EmailInvoice(ctx, created.ID, ""))
	assert.NoError(t, fx.local.EmailInvoice(ctx, created.ID, " other@example.com "))

	noEmail := sampleInvoice("234567")
	noEmail.CustomerEmail = ""
	created, err = fx.local.CreateInvoice(ctx, noEmail)
	require.NoError(t, err)
	assert.ErrorIs(t, fx.local.EmailInvoice(ctx, created.ID, ""), utils.ErrMissingRecipient)

	assert.ErrorIs(t, fx.local.EmailInvoice(ctx, 9999, "x@example.com"), backend.ErrNotFound)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: invoices.invoice_number")))
	assert.True(t, isDuplicateKey(errors.New("Error 1062: Duplicate entry '123456' for key 'invoice_number'")))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}
