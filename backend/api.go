// Package backend describes the Rooms/Invoice collaborator the front desk
// delegates persistence to, and provides an HTTP client for it.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"hotel-frontdesk/models"
)

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the collaborator.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

type RoomAPI interface {
	GetRoom(ctx context.Context, roomID uint) (*models.Room, error)
	ListAvailableRooms(ctx context.Context, hotelID uint) ([]models.Room, error)

	CheckIn(ctx context.Context, roomID uint, p models.CheckinPayload) (*models.Room, error)
	CheckOut(ctx context.Context, roomID uint, p models.CheckoutPayload) (*models.Room, error)
	Clean(ctx context.Context, roomID uint, p models.CleanPayload) (*models.Room, error)
	UpdateStatus(ctx context.Context, roomID uint, p models.StatusPayload) (*models.Room, error)
	// Transfer returns the updated source and target rooms.
	Transfer(ctx context.Context, sourceID uint, p models.TransferPayload) (*models.Room, *models.Room, error)
}

type HistoryAPI interface {
	RoomHistory(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error)
}

type HotelAPI interface {
	HotelInfo(ctx context.Context, hotelID uint) (*models.HotelInfo, error)
}

type InvoiceAPI interface {
	GetInvoice(ctx context.Context, id uint) (*models.InvoiceData, error)
	CreateInvoice(ctx context.Context, inv *models.InvoiceData) (*models.InvoiceData, error)
	UpdateInvoice(ctx context.Context, id uint, inv *models.InvoiceData) (*models.InvoiceData, error)
	DeleteInvoice(ctx context.Context, id uint) error
	UpdateInvoiceStatus(ctx context.Context, id uint, status models.PaymentStatus) (*models.InvoiceData, error)
	EmailInvoice(ctx context.Context, id uint, email string) error
}

// API is everything the front desk needs from the collaborator.
type API interface {
	RoomAPI
	HistoryAPI
	HotelAPI
	InvoiceAPI
}
