package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"hotel-frontdesk/backend"
	"hotel-frontdesk/logger"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

const maxInvoiceNumberAttempts = 5

var ErrInvoiceNumberExhausted = errors.New("could not allocate a unique invoice number")

// InvoiceService stores invoices locally. The invoice_number column is unique;
// Create draws a fresh number when the requested one is taken.
type InvoiceService struct {
	DB        *gorm.DB
	SMTP      utils.SMTPConfig
	NewNumber func() (string, error)
}

func NewInvoiceService(db *gorm.DB, smtp utils.SMTPConfig) *InvoiceService {
	return &InvoiceService{DB: db, SMTP: smtp, NewNumber: utils.GenerateInvoiceNumber}
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id uint) (*models.InvoiceData, error) {
	var inv models.InvoiceData
	if err := s.DB.WithContext(ctx).First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invoice %d: %w", id, backend.ErrNotFound)
		}
		return nil, err
	}
	return &inv, nil
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, in *models.InvoiceData) (*models.InvoiceData, error) {
	if in == nil {
		return nil, errors.New("nil invoice")
	}
	inv := *in
	inv.ID = 0
	inv.Recalculate()

	for attempt := 0; attempt < maxInvoiceNumberAttempts; attempt++ {
		if attempt > 0 || !utils.IsValidInvoiceNumber(inv.InvoiceNumber) {
			n, err := s.NewNumber()
			if err != nil {
				return nil, fmt.Errorf("generate invoice number: %w", err)
			}
			inv.InvoiceNumber = n
		}

		err := s.DB.WithContext(ctx).Create(&inv).Error
		if err == nil {
			return &inv, nil
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
		logger.WarnContext(ctx, "invoice number collision, retrying", "invoice_number", inv.InvoiceNumber, "attempt", attempt+1)
		inv.ID = 0
	}
	return nil, ErrInvoiceNumberExhausted
}

// UpdateInvoice replaces the editable fields. The invoice number only changes
// when a valid new one is given.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uint, in *models.InvoiceData) (*models.InvoiceData, error) {
	if in == nil {
		return nil, errors.New("nil invoice")
	}
	existing, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	inv := *in
	inv.ID = existing.ID
	inv.CreatedAt = existing.CreatedAt
	if inv.Date.IsZero() {
		inv.Date = existing.Date
	}
	if !utils.IsValidInvoiceNumber(inv.InvoiceNumber) {
		inv.InvoiceNumber = existing.InvoiceNumber
	}
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = existing.PaymentStatus
	}
	inv.Recalculate()

	if err := s.DB.WithContext(ctx).Save(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.InvoiceData{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("invoice %d: %w", id, backend.ErrNotFound)
	}
	return nil
}

func (s *InvoiceService) UpdateInvoiceStatus(ctx context.Context, id uint, status models.PaymentStatus) (*models.InvoiceData, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(inv).Update("payment_status", status).Error; err != nil {
		return nil, err
	}
	inv.PaymentStatus = status
	return inv, nil
}

// EmailInvoice sends to email, or to the invoice's customer address when
// email is empty.
func (s *InvoiceService) EmailInvoice(ctx context.Context, id uint, email string) error {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	to := strings.TrimSpace(email)
	if to == "" {
		to = inv.CustomerEmail
	}
	return utils.SendInvoiceEmail(s.SMTP, to, inv)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
