package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotel-frontdesk/backend"
	"hotel-frontdesk/billing"
	"hotel-frontdesk/events"
	"hotel-frontdesk/invoice"
	"hotel-frontdesk/logger"
	"hotel-frontdesk/models"
	"hotel-frontdesk/monitoring"
	"hotel-frontdesk/roomstate"
	"hotel-frontdesk/session"
	"hotel-frontdesk/utils"
)

var (
	ErrActionInFlight = errors.New("another action is in progress for this room")
	ErrNoActiveStay   = errors.New("room has no active stay")
)

// FrontDesk drives room transitions. Each transition is validated against the
// room state machine first, then delegated to the backend; the session cache
// is only touched after the backend confirmed.
type FrontDesk struct {
	api       backend.API
	sessions  session.Store
	calc      *billing.Calculator
	assembler *invoice.Assembler
	publisher events.Publisher
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[uint]struct{}
}

type FrontDeskOption func(*FrontDesk)

func WithClock(now func() time.Time) FrontDeskOption {
	return func(f *FrontDesk) { f.now = now }
}

func WithPublisher(p events.Publisher) FrontDeskOption {
	return func(f *FrontDesk) { f.publisher = p }
}

func WithAssembler(a *invoice.Assembler) FrontDeskOption {
	return func(f *FrontDesk) { f.assembler = a }
}

func NewFrontDesk(api backend.API, sessions session.Store, calc *billing.Calculator, opts ...FrontDeskOption) *FrontDesk {
	f := &FrontDesk{
		api:       api,
		sessions:  sessions,
		calc:      calc,
		publisher: events.NopPublisher{},
		now:       time.Now,
		inFlight:  make(map[uint]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.assembler == nil {
		f.assembler = invoice.NewAssembler(api, invoice.WithClock(f.now))
	}
	return f
}

// acquire marks the rooms busy until release is called.
func (f *FrontDesk) acquire(roomIDs ...uint) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range roomIDs {
		if _, busy := f.inFlight[id]; busy {
			return nil, fmt.Errorf("room %d: %w", id, ErrActionInFlight)
		}
	}
	for _, id := range roomIDs {
		f.inFlight[id] = struct{}{}
	}
	return func() {
		f.mu.Lock()
		for _, id := range roomIDs {
			delete(f.inFlight, id)
		}
		f.mu.Unlock()
	}, nil
}

func (f *FrontDesk) Room(ctx context.Context, roomID uint) (*models.Room, error) {
	defer monitoring.TrackBackendCall("get_room", time.Now())
	return f.api.GetRoom(ctx, roomID)
}

func (f *FrontDesk) AvailableRooms(ctx context.Context, hotelID uint) ([]models.Room, error) {
	defer monitoring.TrackBackendCall("list_available_rooms", time.Now())
	return f.api.ListAvailableRooms(ctx, hotelID)
}

func (f *FrontDesk) HotelInfo(ctx context.Context, hotelID uint) (*models.HotelInfo, error) {
	defer monitoring.TrackBackendCall("hotel_info", time.Now())
	return f.api.HotelInfo(ctx, hotelID)
}

// attempt loads the room and validates action. Rejections never reach the
// backend's transition endpoints.
func (f *FrontDesk) attempt(ctx context.Context, roomID uint, action roomstate.Action) (*models.Room, *models.Room, error) {
	room, err := f.Room(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	next, err := roomstate.Attempt(room, action)
	if err != nil {
		monitoring.TrackTransition(string(action), monitoring.StatusRejected)
		logger.WarnContext(ctx, "room transition rejected", "room_id", roomID, "action", action, "status", room.Status)
		return nil, nil, err
	}
	return room, next, nil
}

func (f *FrontDesk) failed(ctx context.Context, action roomstate.Action, roomID uint, err error) error {
	monitoring.TrackTransition(string(action), monitoring.StatusFailed)
	logger.ErrorContext(ctx, "room transition failed", "room_id", roomID, "action", action, "error", err)
	return fmt.Errorf("%s room %d: %w", action, roomID, err)
}

func (f *FrontDesk) publish(ctx context.Context, subject string, ev events.RoomEvent) {
	ev.OccurredAt = f.now()
	if err := f.publisher.Publish(ctx, subject, ev); err != nil {
		logger.WarnContext(ctx, "publish room event failed", "subject", subject, "room_id", ev.RoomID, "error", err)
	}
}

type CheckinRequest struct {
	Session models.CheckinSession
	StaffID string
}

func (f *FrontDesk) CheckIn(ctx context.Context, roomID uint, req CheckinRequest) (*models.Room, error) {
	release, err := f.acquire(roomID)
	if err != nil {
		return nil, err
	}
	defer release()

	room, next, err := f.attempt(ctx, roomID, roomstate.ActionCheckIn)
	if err != nil {
		return nil, err
	}

	now := f.now()
	sess := req.Session
	sess.RoomID = roomID
	sess.StaffID = firstNonEmpty(req.StaffID, sess.StaffID)
	sess.CheckinTime = now
	sess.Normalize()

	payload := models.CheckinPayload{
		EventRef:    uuid.NewString(),
		CheckinTime: now,
		StaffID:     sess.StaffID,
		Session:     &sess,
	}

	started := time.Now()
	updated, err := f.api.CheckIn(ctx, roomID, payload)
	monitoring.TrackBackendCall("checkin", started)
	if err != nil {
		return nil, f.failed(ctx, roomstate.ActionCheckIn, roomID, err)
	}

	if err := f.sessions.Save(ctx, &sess); err != nil {
		logger.ErrorContext(ctx, "save checkin session failed", "room_id", roomID, "error", err)
	}

	monitoring.TrackTransition(string(roomstate.ActionCheckIn), monitoring.StatusOK)
	logger.InfoContext(ctx, "room checked in", "room_id", roomID, "event_ref", payload.EventRef)
	f.publish(ctx, events.RoomCheckedIn, events.RoomEvent{
		RoomID:     roomID,
		HotelID:    room.HotelID,
		RoomNumber: room.RoomNumber,
		From:       string(room.Status),
		To:         string(next.Status),
		EventRef:   payload.EventRef,
		StaffID:    sess.StaffID,
	})
	return updated, nil
}

type CheckoutRequest struct {
	StaffID string

	// Unpaid closes the stay with a notpay event.
	Unpaid bool
	Draft  *models.InvoiceDraft
}

type CheckoutResult struct {
	Room      *models.Room        `json:"room"`
	Breakdown billing.Breakdown   `json:"breakdown"`
	Invoice   *models.InvoiceData `json:"invoice"`

	// InvoiceSaveError is set when the stay was closed but the invoice could
	// not be stored. Invoice then holds the unsaved copy.
	InvoiceSaveError string `json:"invoiceSaveError,omitempty"`
}

func (f *FrontDesk) CheckOut(ctx context.Context, roomID uint, req CheckoutRequest) (*CheckoutResult, error) {
	release, err := f.acquire(roomID)
	if err != nil {
		return nil, err
	}
	defer release()

	room, next, err := f.attempt(ctx, roomID, roomstate.ActionCheckOut)
	if err != nil {
		return nil, err
	}
	idx := room.OpenCheckin()
	if idx < 0 {
		return nil, fmt.Errorf("room %d: %w", roomID, ErrNoActiveStay)
	}
	open := room.Events[idx]

	sess := f.loadSession(ctx, roomID)
	now := f.now()
	b := f.calc.Calculate(billing.Input{
		Rates:        room.RateTable,
		CheckinTime:  open.CheckinTime,
		CheckoutTime: now,
		Session:      sess,
	})

	evType := models.EventCheckout
	if req.Unpaid || (req.Draft != nil && req.Draft.PaymentStatus != nil &&
		strings.EqualFold(strings.TrimSpace(*req.Draft.PaymentStatus), string(models.PaymentUnpaid))) {
		evType = models.EventNotPay
	}
	staffID := req.StaffID
	if staffID == "" && sess != nil {
		staffID = sess.StaffID
	}

	payload := models.CheckoutPayload{
		CheckinRef:   open.Ref,
		EventRef:     uuid.NewString(),
		Type:         evType,
		CheckinTime:  open.CheckinTime,
		CheckoutTime: now,
		Payment:      b.Total,
		StaffID:      staffID,
	}

	started := time.Now()
	updated, err := f.api.CheckOut(ctx, roomID, payload)
	monitoring.TrackBackendCall("checkout", started)
	if err != nil {
		return nil, f.failed(ctx, roomstate.ActionCheckOut, roomID, err)
	}

	terminal := models.Event{
		Ref:          payload.EventRef,
		RoomID:       roomID,
		HotelID:      room.HotelID,
		Type:         evType,
		CheckinTime:  open.CheckinTime,
		CheckoutTime: utils.PtrTime(now),
		Payment:      b.Total,
		StaffID:      staffID,
	}

	result := &CheckoutResult{Room: updated, Breakdown: b}

	inv, err := f.assembler.Assemble(ctx, invoice.Input{
		Room:      room,
		Event:     &terminal,
		Session:   sess,
		Draft:     req.Draft,
		Breakdown: &b,
	})
	if err != nil {
		result.InvoiceSaveError = err.Error()
		logger.ErrorContext(ctx, "assemble invoice failed", "room_id", roomID, "error", err)
	} else {
		result.Invoice = inv
		started = time.Now()
		saved, err := f.api.CreateInvoice(ctx, inv)
		monitoring.TrackBackendCall("create_invoice", started)
		if err != nil {
			result.InvoiceSaveError = err.Error()
			logger.ErrorContext(ctx, "save invoice failed", "room_id", roomID, "invoice", inv.InvoiceNumber, "error", err)
		} else {
			result.Invoice = saved
		}
	}

	if err := f.sessions.Delete(ctx, roomID); err != nil {
		logger.ErrorContext(ctx, "delete checkin session failed", "room_id", roomID, "error", err)
	}

	monitoring.TrackTransition(string(roomstate.ActionCheckOut), monitoring.StatusOK)
	monitoring.TrackCharge(string(b.Tier), b.Total)
	logger.InfoContext(ctx, "room checked out", "room_id", roomID, "type", evType, "tier", b.Tier, "total", b.Total)
	f.publish(ctx, events.RoomCheckedOut, events.RoomEvent{
		RoomID:     roomID,
		HotelID:    room.HotelID,
		RoomNumber: room.RoomNumber,
		From:       string(room.Status),
		To:         string(next.Status),
		EventRef:   payload.EventRef,
		StaffID:    staffID,
		Payment:    b.Total,
	})
	return result, nil
}

func (f *FrontDesk) Clean(ctx context.Context, roomID uint, staffID, note string) (*models.Room, error) {
	release, err := f.acquire(roomID)
	if err != nil {
		return nil, err
	}
	defer release()

	room, next, err := f.attempt(ctx, roomID, roomstate.ActionClean)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	updated, err := f.api.Clean(ctx, roomID, models.CleanPayload{StaffID: staffID, Note: note})
	monitoring.TrackBackendCall("clean", started)
	if err != nil {
		return nil, f.failed(ctx, roomstate.ActionClean, roomID, err)
	}

	// a session left over from a failed delete at checkout must not survive
	if err := f.sessions.Delete(ctx, roomID); err != nil {
		logger.WarnContext(ctx, "delete stale session failed", "room_id", roomID, "error", err)
	}

	monitoring.TrackTransition(string(roomstate.ActionClean), monitoring.StatusOK)
	f.publish(ctx, events.RoomCleaned, events.RoomEvent{
		RoomID:     roomID,
		HotelID:    room.HotelID,
		RoomNumber: room.RoomNumber,
		From:       string(room.Status),
		To:         string(next.Status),
		StaffID:    staffID,
		Note:       note,
	})
	return updated, nil
}

// ToggleMaintenance moves a room into maintenance, or out of it back to
// available.
func (f *FrontDesk) ToggleMaintenance(ctx context.Context, roomID uint, staffID, note string) (*models.Room, error) {
	release, err := f.acquire(roomID)
	if err != nil {
		return nil, err
	}
	defer release()

	room, next, err := f.attempt(ctx, roomID, roomstate.ActionMaintenance)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	updated, err := f.api.UpdateStatus(ctx, roomID, models.StatusPayload{Status: next.Status, StaffID: staffID, Note: note})
	monitoring.TrackBackendCall("update_status", started)
	if err != nil {
		return nil, f.failed(ctx, roomstate.ActionMaintenance, roomID, err)
	}

	if next.Status == models.RoomAvailable {
		if err := f.sessions.Delete(ctx, roomID); err != nil {
			logger.WarnContext(ctx, "delete stale session failed", "room_id", roomID, "error", err)
		}
	}

	monitoring.TrackTransition(string(roomstate.ActionMaintenance), monitoring.StatusOK)
	f.publish(ctx, events.RoomStatusChanged, events.RoomEvent{
		RoomID:     roomID,
		HotelID:    room.HotelID,
		RoomNumber: room.RoomNumber,
		From:       string(room.Status),
		To:         string(next.Status),
		StaffID:    staffID,
		Note:       note,
	})
	return updated, nil
}

type TransferResult struct {
	Source *models.Room `json:"source"`
	Target *models.Room `json:"target"`
}

// Transfer moves the stay in progress from sourceID to targetID. The session
// follows the guest; final billing uses the original checkin time.
func (f *FrontDesk) Transfer(ctx context.Context, sourceID, targetID uint, staffID, note string) (*TransferResult, error) {
	if sourceID == targetID {
		return nil, &roomstate.TransitionError{RoomID: targetID, From: models.RoomActive, Action: roomstate.ActionTransferIn}
	}
	release, err := f.acquire(sourceID, targetID)
	if err != nil {
		return nil, err
	}
	defer release()

	src, _, err := f.attempt(ctx, sourceID, roomstate.ActionTransferOut)
	if err != nil {
		return nil, err
	}
	if src.OpenCheckin() < 0 {
		return nil, fmt.Errorf("room %d: %w", sourceID, ErrNoActiveStay)
	}
	dst, _, err := f.attempt(ctx, targetID, roomstate.ActionTransferIn)
	if err != nil {
		return nil, err
	}

	payload := models.TransferPayload{
		TargetID:     targetID,
		EventRef:     uuid.NewString(),
		TransferTime: f.now(),
		StaffID:      staffID,
		Note:         note,
	}

	started := time.Now()
	newSrc, newDst, err := f.api.Transfer(ctx, sourceID, payload)
	monitoring.TrackBackendCall("transfer", started)
	if err != nil {
		return nil, f.failed(ctx, roomstate.ActionTransferOut, sourceID, err)
	}

	if err := session.Move(ctx, f.sessions, sourceID, targetID); err != nil {
		logger.ErrorContext(ctx, "move checkin session failed", "from", sourceID, "to", targetID, "error", err)
	}

	monitoring.TrackTransition(string(roomstate.ActionTransferOut), monitoring.StatusOK)
	logger.InfoContext(ctx, "stay transferred", "from", sourceID, "to", targetID)
	f.publish(ctx, events.RoomTransferred, events.RoomEvent{
		RoomID:     sourceID,
		HotelID:    src.HotelID,
		RoomNumber: src.RoomNumber,
		From:       string(src.Status),
		To:         string(newSrc.Status),
		EventRef:   payload.EventRef,
		StaffID:    staffID,
		TargetID:   dst.ID,
		Note:       note,
	})
	return &TransferResult{Source: newSrc, Target: newDst}, nil
}

// Quote prices the stay in progress as if it ended now.
func (f *FrontDesk) Quote(ctx context.Context, roomID uint) (*billing.Breakdown, error) {
	room, err := f.Room(ctx, roomID)
	if err != nil {
		return nil, err
	}
	idx := room.OpenCheckin()
	if room.Status != models.RoomActive || idx < 0 {
		return nil, fmt.Errorf("room %d: %w", roomID, ErrNoActiveStay)
	}
	b := f.calc.Calculate(billing.Input{
		Rates:        room.RateTable,
		CheckinTime:  room.Events[idx].CheckinTime,
		CheckoutTime: f.now(),
		Session:      f.loadSession(ctx, roomID),
	})
	return &b, nil
}

// loadSession returns nil when the room has no usable session.
func (f *FrontDesk) loadSession(ctx context.Context, roomID uint) *models.CheckinSession {
	s, err := f.sessions.Get(ctx, roomID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			logger.WarnContext(ctx, "load checkin session failed", "room_id", roomID, "error", err)
		}
		return nil
	}
	return s
}

func (f *FrontDesk) Session(ctx context.Context, roomID uint) (*models.CheckinSession, error) {
	return f.sessions.Get(ctx, roomID)
}

func (f *FrontDesk) Sessions(ctx context.Context) (map[uint]*models.CheckinSession, error) {
	return f.sessions.List(ctx)
}

// SessionAmendment holds the fields to change; nil leaves a field as is.
type SessionAmendment struct {
	Guest             *models.GuestInfo         `json:"guest"`
	PaymentMethod     *string                   `json:"paymentMethod"`
	RateType          *string                   `json:"rateType"`
	AdvancePayment    *float64                  `json:"advancePayment"`
	AdditionalCharges *float64                  `json:"additionalCharges"`
	Discount          *float64                  `json:"discount"`
	Services          *[]models.SelectedService `json:"services"`
	Notes             *string                   `json:"notes"`
}

func (f *FrontDesk) AmendSession(ctx context.Context, roomID uint, a SessionAmendment) (*models.CheckinSession, error) {
	release, err := f.acquire(roomID)
	if err != nil {
		return nil, err
	}
	defer release()

	s, err := f.sessions.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if a.Guest != nil {
		s.Guest = *a.Guest
	}
	if a.PaymentMethod != nil {
		s.PaymentMethod = *a.PaymentMethod
	}
	if a.RateType != nil {
		s.RateType = *a.RateType
	}
	if a.AdvancePayment != nil {
		s.AdvancePayment = *a.AdvancePayment
	}
	if a.AdditionalCharges != nil {
		s.AdditionalCharges = *a.AdditionalCharges
	}
	if a.Discount != nil {
		s.Discount = *a.Discount
	}
	if a.Services != nil {
		s.Services = append([]models.SelectedService(nil), (*a.Services)...)
	}
	if a.Notes != nil {
		s.Notes = *a.Notes
	}
	s.RoomID = roomID
	s.Normalize()

	if err := f.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (f *FrontDesk) History(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
	defer monitoring.TrackBackendCall("room_history", time.Now())
	q.Normalize()
	return f.api.RoomHistory(ctx, q)
}

func (f *FrontDesk) GetInvoice(ctx context.Context, id uint) (*models.InvoiceData, error) {
	return f.api.GetInvoice(ctx, id)
}

// CreateInvoice stores a manually entered invoice. Missing numbers are
// generated and the total is always recomputed from the lines.
func (f *FrontDesk) CreateInvoice(ctx context.Context, inv *models.InvoiceData) (*models.InvoiceData, error) {
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		n, err := utils.GenerateInvoiceNumber()
		if err != nil {
			return nil, err
		}
		inv.InvoiceNumber = n
	}
	if inv.Date.IsZero() {
		inv.Date = f.now()
	}
	applyInvoiceDefaults(inv)
	defer monitoring.TrackBackendCall("create_invoice", time.Now())
	return f.api.CreateInvoice(ctx, inv)
}

func (f *FrontDesk) UpdateInvoice(ctx context.Context, id uint, inv *models.InvoiceData) (*models.InvoiceData, error) {
	applyInvoiceDefaults(inv)
	defer monitoring.TrackBackendCall("update_invoice", time.Now())
	return f.api.UpdateInvoice(ctx, id, inv)
}

func (f *FrontDesk) DeleteInvoice(ctx context.Context, id uint) error {
	return f.api.DeleteInvoice(ctx, id)
}

func (f *FrontDesk) UpdateInvoiceStatus(ctx context.Context, id uint, status models.PaymentStatus) (*models.InvoiceData, error) {
	return f.api.UpdateInvoiceStatus(ctx, id, status)
}

func (f *FrontDesk) EmailInvoice(ctx context.Context, id uint, email string) error {
	return f.api.EmailInvoice(ctx, id, strings.TrimSpace(email))
}

func applyInvoiceDefaults(inv *models.InvoiceData) {
	if strings.TrimSpace(inv.CustomerName) == "" {
		inv.CustomerName = invoice.DefaultCustomerName
	}
	if strings.TrimSpace(inv.PaymentMethod) == "" {
		inv.PaymentMethod = models.DefaultPaymentMethod
	}
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = models.PaymentPaid
	}
	inv.AdditionalCharges = max(inv.AdditionalCharges, 0)
	inv.Recalculate()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
