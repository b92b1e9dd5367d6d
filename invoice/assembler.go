// Package invoice builds InvoiceData from a finished stay.
package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-frontdesk/billing"
	"hotel-frontdesk/logger"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

const (
	DefaultCustomerName = "walk-in guest"
	RoomChargeName      = "Room charge"

	defaultHeaderTimeout = 3 * time.Second
)

// HotelInfoFetcher loads the business header printed on invoices.
type HotelInfoFetcher interface {
	HotelInfo(ctx context.Context, hotelID uint) (*models.HotelInfo, error)
}

type Assembler struct {
	hotels        HotelInfoFetcher
	now           func() time.Time
	newNumber     func() (string, error)
	headerTimeout time.Duration
}

type Option func(*Assembler)

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func WithNumberGenerator(gen func() (string, error)) Option {
	return func(a *Assembler) { a.newNumber = gen }
}

func WithHeaderTimeout(d time.Duration) Option {
	return func(a *Assembler) { a.headerTimeout = d }
}

// NewAssembler returns an assembler. hotels may be nil, in which case the
// business header is left to explicit fields only.
func NewAssembler(hotels HotelInfoFetcher, opts ...Option) *Assembler {
	a := &Assembler{
		hotels:        hotels,
		now:           time.Now,
		newNumber:     utils.GenerateInvoiceNumber,
		headerTimeout: defaultHeaderTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type Input struct {
	Room *models.Room
	// Event is the closed checkin event (or the terminal event) of the stay.
	Event *models.Event
	// Session may be nil when it was already evicted.
	Session   *models.CheckinSession
	Draft     *models.InvoiceDraft
	Breakdown *billing.Breakdown
}

// Assemble merges, in priority order, draft fields, session fields, room and
// event fields, then defaults. The result always satisfies
// TotalAmount = sum(products) + AdditionalCharges - Discount, with Discount
// capped so the total never drops below zero.
func (a *Assembler) Assemble(ctx context.Context, in Input) (*models.InvoiceData, error) {
	d := in.Draft
	if d == nil {
		d = &models.InvoiceDraft{}
	}
	s := in.Session
	if s != nil {
		cp := *s
		cp.Normalize()
		s = &cp
	}

	inv := &models.InvoiceData{}

	inv.InvoiceNumber = strings.TrimSpace(deref(d.InvoiceNumber))
	if inv.InvoiceNumber == "" {
		n, err := a.newNumber()
		if err != nil {
			return nil, fmt.Errorf("generate invoice number: %w", err)
		}
		inv.InvoiceNumber = n
	}
	inv.Date = a.now()
	if d.Date != nil {
		inv.Date = *d.Date
	}

	// Customer
	inv.CustomerName = firstNonEmpty(deref(d.CustomerName), sessionGuest(s).Name, DefaultCustomerName)
	inv.CustomerPhone = firstNonEmpty(deref(d.CustomerPhone), sessionGuest(s).Phone)
	inv.CustomerEmail = firstNonEmpty(deref(d.CustomerEmail), sessionGuest(s).Email)

	// Staff
	var eventStaff string
	if in.Event != nil {
		eventStaff = in.Event.StaffID
	}
	var sessionStaff, sessionNotes, sessionPayment, sessionRate string
	if s != nil {
		sessionStaff = s.StaffID
		sessionNotes = s.Notes
		sessionPayment = s.PaymentMethod
		sessionRate = s.RateType
	}
	inv.StaffID = firstNonEmpty(deref(d.StaffID), sessionStaff, eventStaff)
	inv.StaffName = deref(d.StaffName)
	inv.Notes = firstNonEmpty(deref(d.Notes), sessionNotes)

	// Room and stay
	if in.Room != nil {
		inv.HotelID = in.Room.HotelID
		inv.RoomID = in.Room.ID
		inv.RoomNumber = in.Room.RoomNumber
		inv.RoomType = in.Room.RoomType
	}
	var breakdownTier string
	if in.Breakdown != nil {
		breakdownTier = string(in.Breakdown.Tier)
	}
	inv.RateType = firstNonEmpty(deref(d.RateType), sessionRate, breakdownTier)

	inv.CheckinTime = d.CheckinTime
	inv.CheckoutTime = d.CheckoutTime
	if in.Event != nil {
		if inv.CheckinTime == nil && !in.Event.CheckinTime.IsZero() {
			inv.CheckinTime = utils.PtrTime(in.Event.CheckinTime)
		}
		if inv.CheckoutTime == nil && in.Event.CheckoutTime != nil {
			inv.CheckoutTime = utils.PtrTime(*in.Event.CheckoutTime)
		}
	}
	if inv.CheckinTime == nil && s != nil && !s.CheckinTime.IsZero() {
		inv.CheckinTime = utils.PtrTime(s.CheckinTime)
	}
	inv.Duration = strings.TrimSpace(deref(d.Duration))
	if inv.Duration == "" && inv.CheckinTime != nil && inv.CheckoutTime != nil {
		inv.Duration = FormatDuration(*inv.CheckinTime, *inv.CheckoutTime)
	}

	// Money
	inv.Discount, inv.AdditionalCharges = a.adjustments(d, s, in.Breakdown)
	inv.Products = a.products(d, s, in)

	// Payment
	inv.PaymentMethod = strings.ToLower(firstNonEmpty(deref(d.PaymentMethod), sessionPayment, models.DefaultPaymentMethod))
	inv.PaymentStatus = models.PaymentPaid
	if in.Event != nil && in.Event.Type == models.EventNotPay {
		inv.PaymentStatus = models.PaymentUnpaid
	}
	if d.PaymentStatus != nil {
		if st, ok := models.ParsePaymentStatus(*d.PaymentStatus); ok {
			inv.PaymentStatus = st
		}
	}

	inv.BusinessName = deref(d.BusinessName)
	inv.BusinessAddress = deref(d.BusinessAddress)
	inv.BusinessPhone = deref(d.BusinessPhone)
	a.fillHeader(ctx, inv)

	inv.Recalculate()
	return inv, nil
}

func (a *Assembler) adjustments(d *models.InvoiceDraft, s *models.CheckinSession, b *billing.Breakdown) (discount, additional int64) {
	switch {
	case b != nil:
		discount = b.Discount.Round(0).IntPart()
		additional = b.AdditionalCharges.Round(0).IntPart()
	case s != nil:
		discount = roundMoney(s.Discount)
		additional = roundMoney(s.AdditionalCharges)
	}
	if d.Discount != nil {
		discount = max(*d.Discount, 0)
	}
	if d.AdditionalCharges != nil {
		additional = max(*d.AdditionalCharges, 0)
	}
	return discount, additional
}

func (a *Assembler) products(d *models.InvoiceDraft, s *models.CheckinSession, in Input) []models.InvoiceProduct {
	products := make([]models.InvoiceProduct, 0, len(d.Products)+4)
	explicit := make(map[string]bool, len(d.Products))
	for _, p := range d.Products {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		if p.Quantity <= 0 {
			p.Quantity = 1
		}
		products = append(products, p)
		explicit[strings.ToLower(p.Name)] = true
	}

	if in.Room != nil && !explicit[strings.ToLower(RoomChargeName)] {
		products = append([]models.InvoiceProduct{{
			Name:      RoomChargeName,
			UnitPrice: roomCharge(s, in),
			Quantity:  1,
		}}, products...)
	}

	// Only lines the caller typed in replace session services. Services that
	// share a name with each other are all billed.
	if s != nil {
		for _, svc := range s.Services {
			name := svc.Name
			if name == "" {
				name = fmt.Sprintf("Service #%d", svc.ServiceID)
			}
			if explicit[strings.ToLower(strings.TrimSpace(name))] {
				continue
			}
			products = append(products, models.InvoiceProduct{
				Name:      name,
				UnitPrice: roundMoney(svc.UnitPrice),
				Quantity:  svc.Quantity,
			})
		}
	}
	return products
}

// roomCharge prefers the calculated room total. Without a breakdown it backs
// the room share out of the recorded payment.
func roomCharge(s *models.CheckinSession, in Input) int64 {
	if in.Breakdown != nil {
		return in.Breakdown.RoomTotal.Round(0).IntPart()
	}
	if in.Event == nil {
		return 0
	}
	charge := in.Event.Payment - billing.ServiceTotal(s).Round(0).IntPart()
	if s != nil {
		charge = charge - roundMoney(s.AdditionalCharges) + roundMoney(s.Discount)
	}
	return max(charge, 0)
}

func (a *Assembler) fillHeader(ctx context.Context, inv *models.InvoiceData) {
	if a.hotels == nil || inv.HotelID == 0 {
		return
	}
	if inv.BusinessName != "" && inv.BusinessAddress != "" && inv.BusinessPhone != "" {
		return
	}
	if a.headerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.headerTimeout)
		defer cancel()
	}
	info, err := a.hotels.HotelInfo(ctx, inv.HotelID)
	if err != nil || info == nil {
		logger.WarnContext(ctx, "invoice header lookup failed", "hotel_id", inv.HotelID, "error", err)
		return
	}
	inv.BusinessName = firstNonEmpty(inv.BusinessName, info.Name)
	inv.BusinessAddress = firstNonEmpty(inv.BusinessAddress, info.Address)
	inv.BusinessPhone = firstNonEmpty(inv.BusinessPhone, info.Phone)
}

// FormatDuration renders the billed stay length, e.g. "3 hours" or
// "1 day 2 hours".
func FormatDuration(checkin, checkout time.Time) string {
	hours, _ := billing.Elapsed(checkin, checkout)
	if hours <= 0 {
		return "0 hours"
	}
	days, rest := hours/24, hours%24
	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if rest > 0 {
		parts = append(parts, plural(rest, "hour"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func sessionGuest(s *models.CheckinSession) models.GuestInfo {
	if s == nil {
		return models.GuestInfo{}
	}
	return s.Guest
}

func roundMoney(v float64) int64 {
	return billing.Money(v).Round(0).IntPart()
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
