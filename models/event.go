package models

import "time"

type EventType string

const (
	EventCheckin  EventType = "checkin"
	EventCheckout EventType = "checkout"
	EventNotPay   EventType = "notpay"
)

// Event is one entry of a room's stay log. Events are append-only except for
// the open checkin event, which is closed in place at checkout or transfer.
type Event struct {
	ID           uint       `gorm:"primaryKey" json:"id,omitempty"`
	Ref          string     `gorm:"column:ref;type:varchar(36);index" json:"ref"`
	RoomID       uint       `gorm:"column:room_id;index" json:"roomId"`
	HotelID      uint       `gorm:"column:hotel_id;index" json:"hotelId"`
	Type         EventType  `gorm:"column:type;type:varchar(16);index" json:"type"`
	CheckinTime  time.Time  `gorm:"column:checkin_time" json:"checkinTime"`
	CheckoutTime *time.Time `gorm:"column:checkout_time" json:"checkoutTime,omitempty"`
	Payment      int64      `gorm:"column:payment;default:0" json:"payment"`
	StaffID      string     `gorm:"column:staff_id;type:varchar(64)" json:"staffId,omitempty"`
	Note         string     `gorm:"column:note;type:text" json:"note,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (Event) TableName() string { return "room_events" }

func (e Event) clone() Event {
	out := e
	if e.CheckoutTime != nil {
		t := *e.CheckoutTime
		out.CheckoutTime = &t
	}
	return out
}

// RoomStatusLog records administrative status changes (maintenance toggles).
type RoomStatusLog struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	RoomID    uint       `gorm:"column:room_id;index" json:"roomId"`
	From      RoomStatus `gorm:"column:from_status;type:varchar(32)" json:"from"`
	To        RoomStatus `gorm:"column:to_status;type:varchar(32)" json:"to"`
	StaffID   string     `gorm:"column:staff_id;type:varchar(64)" json:"staffId"`
	Note      string     `gorm:"column:note;type:text" json:"note"`
	CreatedAt time.Time  `json:"createdAt"`
}
