package models

import (
	"strings"
	"time"
)

const DefaultPaymentMethod = "cash"

type GuestInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type SelectedService struct {
	ServiceID uint    `json:"serviceId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// CheckinSession is the in-progress stay record kept between check-in and
// check-out of a room.
type CheckinSession struct {
	RoomID            uint              `json:"roomId"`
	Guest             GuestInfo         `json:"guest"`
	PaymentMethod     string            `json:"paymentMethod"`
	RateType          string            `json:"rateType,omitempty"`
	AdvancePayment    float64           `json:"advancePayment"`
	AdditionalCharges float64           `json:"additionalCharges"`
	Discount          float64           `json:"discount"`
	Services          []SelectedService `json:"services"`
	Notes             string            `json:"notes,omitempty"`
	StaffID           string            `json:"staffId,omitempty"`
	CheckinTime       time.Time         `json:"checkinTime"`
}

// Normalize applies the defaults once so consumers never have to fall back on
// their own: trimmed guest fields, cash as payment method, non-negative money
// fields and services with at least one unit.
func (s *CheckinSession) Normalize() {
	s.Guest.Name = strings.TrimSpace(s.Guest.Name)
	s.Guest.Phone = strings.TrimSpace(s.Guest.Phone)
	s.Guest.Email = strings.TrimSpace(s.Guest.Email)
	s.PaymentMethod = strings.ToLower(strings.TrimSpace(s.PaymentMethod))
	if s.PaymentMethod == "" {
		s.PaymentMethod = DefaultPaymentMethod
	}
	s.RateType = strings.ToLower(strings.TrimSpace(s.RateType))
	s.AdvancePayment = nonNegative(s.AdvancePayment)
	s.AdditionalCharges = nonNegative(s.AdditionalCharges)
	s.Discount = nonNegative(s.Discount)

	services := make([]SelectedService, 0, len(s.Services))
	for _, svc := range s.Services {
		svc.Name = strings.TrimSpace(svc.Name)
		if svc.Name == "" && svc.ServiceID == 0 {
			continue
		}
		if svc.Quantity <= 0 {
			svc.Quantity = 1
		}
		svc.UnitPrice = nonNegative(svc.UnitPrice)
		services = append(services, svc)
	}
	s.Services = services
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
