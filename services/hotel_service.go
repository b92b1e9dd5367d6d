package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hotel-frontdesk/backend"
	"hotel-frontdesk/models"
)

type HotelService struct {
	DB *gorm.DB
}

func NewHotelService(db *gorm.DB) *HotelService {
	return &HotelService{DB: db}
}

func (s *HotelService) HotelInfo(ctx context.Context, hotelID uint) (*models.HotelInfo, error) {
	var hotel models.HotelInfo
	if err := s.DB.WithContext(ctx).First(&hotel, hotelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("hotel %d: %w", hotelID, backend.ErrNotFound)
		}
		return nil, err
	}
	return &hotel, nil
}
