package models

import "time"

// Payloads sent to the backend collaborator for room transitions.

type CheckinPayload struct {
	EventRef    string          `json:"eventRef"`
	CheckinTime time.Time       `json:"checkinTime"`
	StaffID     string          `json:"staffId,omitempty"`
	Session     *CheckinSession `json:"session,omitempty"`
}

type CheckoutPayload struct {
	CheckinRef   string    `json:"checkinRef"`
	EventRef     string    `json:"eventRef"`
	Type         EventType `json:"type"`
	CheckinTime  time.Time `json:"checkinTime"`
	CheckoutTime time.Time `json:"checkoutTime"`
	Payment      int64     `json:"payment"`
	StaffID      string    `json:"staffId,omitempty"`
}

type CleanPayload struct {
	StaffID string `json:"staffId,omitempty"`
	Note    string `json:"note,omitempty"`
}

type StatusPayload struct {
	Status  RoomStatus `json:"status"`
	StaffID string     `json:"staffId,omitempty"`
	Note    string     `json:"note,omitempty"`
}

type TransferPayload struct {
	TargetID     uint      `json:"targetId"`
	EventRef     string    `json:"eventRef"`
	TransferTime time.Time `json:"transferTime"`
	StaffID      string    `json:"staffId,omitempty"`
	Note         string    `json:"note,omitempty"`
}

type InvoiceStatusPayload struct {
	Status PaymentStatus `json:"status"`
}

type InvoiceEmailPayload struct {
	Email string `json:"email"`
}
