package models

import (
	"strings"
	"time"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomActive      RoomStatus = "active"
	RoomDirty       RoomStatus = "dirty"
	RoomMaintenance RoomStatus = "maintenance"
)

// ParseRoomStatus accepts the canonical names plus the "occupied" alias used by
// older room boards.
func ParseRoomStatus(s string) (RoomStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "available":
		return RoomAvailable, true
	case "active", "occupied":
		return RoomActive, true
	case "dirty":
		return RoomDirty, true
	case "maintenance":
		return RoomMaintenance, true
	default:
		return "", false
	}
}

// RateTable holds the static pricing attributes of a room. FirstHourRate and
// AdditionalHourRate are optional; billing falls back to HourlyRate for them.
type RateTable struct {
	HourlyRate         float64  `gorm:"column:hourly_rate;default:0" json:"hourlyRate"`
	DailyRate          float64  `gorm:"column:daily_rate;default:0" json:"dailyRate"`
	NightlyRate        float64  `gorm:"column:nightly_rate;default:0" json:"nightlyRate"`
	FirstHourRate      *float64 `gorm:"column:first_hour_rate" json:"firstHourRate,omitempty"`
	AdditionalHourRate *float64 `gorm:"column:additional_hour_rate" json:"additionalHourRate,omitempty"`
}

type Room struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	HotelID    uint       `gorm:"column:hotel_id;uniqueIndex:idx_hotel_room" json:"hotelId"`
	RoomNumber string     `gorm:"column:room_number;uniqueIndex:idx_hotel_room;type:varchar(50)" json:"roomNumber"`
	RoomType   string     `gorm:"column:room_type;type:varchar(100)" json:"roomType"`
	Status     RoomStatus `gorm:"column:status;type:varchar(32);default:available" json:"status"`

	RateTable `gorm:"embedded"`

	Events []Event `gorm:"foreignKey:RoomID" json:"events"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OpenCheckin returns the index of the last checkin event that has not been
// closed yet, or -1 when the room has no stay in progress.
func (r *Room) OpenCheckin() int {
	for i := len(r.Events) - 1; i >= 0; i-- {
		ev := r.Events[i]
		if ev.Type == EventCheckin && ev.CheckoutTime == nil {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can stage changes without touching the
// original.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	if r.FirstHourRate != nil {
		v := *r.FirstHourRate
		out.FirstHourRate = &v
	}
	if r.AdditionalHourRate != nil {
		v := *r.AdditionalHourRate
		out.AdditionalHourRate = &v
	}
	out.Events = make([]Event, len(r.Events))
	for i := range r.Events {
		out.Events[i] = r.Events[i].clone()
	}
	return &out
}
