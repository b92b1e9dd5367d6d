package services

import (
	"gorm.io/gorm"

	"hotel-frontdesk/backend"
	"hotel-frontdesk/utils"
)

// LocalBackend serves the collaborator API from the service's own database
// (BACKEND_MODE=local).
type LocalBackend struct {
	*RoomService
	*HotelService
	*InvoiceService
}

var _ backend.API = (*LocalBackend)(nil)

func NewLocalBackend(db *gorm.DB, smtp utils.SMTPConfig) *LocalBackend {
	return &LocalBackend{
		RoomService:    NewRoomService(db),
		HotelService:   NewHotelService(db),
		InvoiceService: NewInvoiceService(db, smtp),
	}
}
