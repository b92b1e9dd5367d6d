package models

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type HistoryQuery struct {
	HotelID uint `form:"hotelId" url:"hotelId,omitempty" json:"hotelId,omitempty"`
	RoomID  uint `form:"roomId" url:"roomId,omitempty" json:"roomId,omitempty"`
	Page    int  `form:"page" url:"page,omitempty" json:"page"`
	Limit   int  `form:"limit" url:"limit,omitempty" json:"limit"`
}

// Normalize clamps paging to page >= 1 and 1 <= limit <= MaxHistoryLimit.
func (q *HistoryQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Limit > MaxHistoryLimit {
		q.Limit = MaxHistoryLimit
	}
}

func (q HistoryQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type HistoryRecord struct {
	Event      `gorm:"embedded"`
	RoomNumber string `gorm:"column:room_number" json:"roomNumber"`
}

type HistoryPage struct {
	Records      []HistoryRecord `json:"records"`
	Total        int64           `json:"total"`
	TotalPayment int64           `json:"totalPayment"`
	Page         int             `json:"page"`
	Limit        int             `json:"limit"`
}
