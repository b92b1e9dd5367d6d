package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentVoid   PaymentStatus = "void"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentPaid:
		return PaymentPaid, true
	case PaymentUnpaid:
		return PaymentUnpaid, true
	case PaymentVoid:
		return PaymentVoid, true
	default:
		return "", false
	}
}

type InvoiceProduct struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

func (p InvoiceProduct) Amount() int64 {
	return p.UnitPrice * int64(p.Quantity)
}

// InvoiceData is the assembled invoice. It is both the API payload and the
// row stored by the local backend.
type InvoiceData struct {
	ID            uint      `gorm:"primaryKey" json:"id,omitempty"`
	InvoiceNumber string    `gorm:"column:invoice_number;uniqueIndex;type:varchar(6)" json:"invoiceNumber"`
	Date          time.Time `gorm:"column:date" json:"date"`

	HotelID         uint   `gorm:"column:hotel_id;index" json:"hotelId,omitempty"`
	BusinessName    string `gorm:"column:business_name;size:255" json:"businessName"`
	BusinessAddress string `gorm:"column:business_address;type:text" json:"businessAddress"`
	BusinessPhone   string `gorm:"column:business_phone;size:50" json:"businessPhone"`

	StaffID   string `gorm:"column:staff_id;size:64" json:"staffId,omitempty"`
	StaffName string `gorm:"column:staff_name;size:255" json:"staffName,omitempty"`

	CustomerName  string `gorm:"column:customer_name;size:255" json:"customerName"`
	CustomerPhone string `gorm:"column:customer_phone;size:50" json:"customerPhone,omitempty"`
	CustomerEmail string `gorm:"column:customer_email;size:150" json:"customerEmail,omitempty"`

	RoomID       uint       `gorm:"column:room_id;index" json:"roomId,omitempty"`
	RoomNumber   string     `gorm:"column:room_number;size:50" json:"roomNumber,omitempty"`
	RoomType     string     `gorm:"column:room_type;size:100" json:"roomType,omitempty"`
	RateType     string     `gorm:"column:rate_type;size:16" json:"rateType,omitempty"`
	CheckinTime  *time.Time `gorm:"column:checkin_time" json:"checkinTime,omitempty"`
	CheckoutTime *time.Time `gorm:"column:checkout_time" json:"checkoutTime,omitempty"`
	Duration     string     `gorm:"column:duration;size:64" json:"duration,omitempty"`

	Products          datatypes.JSONSlice[InvoiceProduct] `gorm:"column:products" json:"products"`
	Discount          int64                               `gorm:"column:discount" json:"discount"`
	AdditionalCharges int64                               `gorm:"column:additional_charges" json:"additionalCharges"`
	TotalAmount       int64                               `gorm:"column:total_amount" json:"totalAmount"`

	PaymentMethod string        `gorm:"column:payment_method;size:32" json:"paymentMethod"`
	PaymentStatus PaymentStatus `gorm:"column:payment_status;size:16" json:"paymentStatus"`
	Notes         string        `gorm:"column:notes;type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (InvoiceData) TableName() string { return "invoices" }

// Recalculate sets TotalAmount = sum(line items) + AdditionalCharges - Discount.
// A discount larger than the charges is cut down to them, so the total bottoms
// out at zero the same way the billing calculator does.
func (inv *InvoiceData) Recalculate() {
	var sum int64
	for _, p := range inv.Products {
		sum += p.Amount()
	}
	gross := sum + inv.AdditionalCharges
	inv.Discount = min(max(inv.Discount, 0), max(gross, 0))
	inv.TotalAmount = gross - inv.Discount
}

// InvoiceDraft carries the fields a caller set explicitly. Nil means "not
// provided" and lets the assembler fall back to session and room data.
type InvoiceDraft struct {
	InvoiceNumber     *string          `json:"invoiceNumber,omitempty"`
	Date              *time.Time       `json:"date,omitempty"`
	BusinessName      *string          `json:"businessName,omitempty"`
	BusinessAddress   *string          `json:"businessAddress,omitempty"`
	BusinessPhone     *string          `json:"businessPhone,omitempty"`
	StaffID           *string          `json:"staffId,omitempty"`
	StaffName         *string          `json:"staffName,omitempty"`
	CustomerName      *string          `json:"customerName,omitempty"`
	CustomerPhone     *string          `json:"customerPhone,omitempty"`
	CustomerEmail     *string          `json:"customerEmail,omitempty"`
	RateType          *string          `json:"rateType,omitempty"`
	CheckinTime       *time.Time       `json:"checkinTime,omitempty"`
	CheckoutTime      *time.Time       `json:"checkoutTime,omitempty"`
	Duration          *string          `json:"duration,omitempty"`
	Products          []InvoiceProduct `json:"products,omitempty"`
	Discount          *int64           `json:"discount,omitempty"`
	AdditionalCharges *int64           `json:"additionalCharges,omitempty"`
	PaymentMethod     *string          `json:"paymentMethod,omitempty"`
	PaymentStatus     *string          `json:"paymentStatus,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
}
