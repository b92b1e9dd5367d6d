package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-frontdesk/backend"
	"hotel-frontdesk/models"
	"hotel-frontdesk/roomstate"
)

// RoomService is the local (gorm) implementation of the room and history
// collaborator calls. Every transition runs in one transaction with the room
// row locked.
type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

func (s *RoomService) GetRoom(ctx context.Context, roomID uint) (*models.Room, error) {
	return loadRoom(s.DB.WithContext(ctx), roomID, false)
}

func (s *RoomService) ListAvailableRooms(ctx context.Context, hotelID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.WithContext(ctx).
		Where("hotel_id = ? AND status = ?", hotelID, models.RoomAvailable).
		Order("room_number").
		Find(&rooms).Error
	return rooms, err
}

func (s *RoomService) CheckIn(ctx context.Context, roomID uint, p models.CheckinPayload) (*models.Room, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := loadRoom(tx, roomID, true)
		if err != nil {
			return err
		}
		next, err := roomstate.Attempt(room, roomstate.ActionCheckIn)
		if err != nil {
			return err
		}

		checkinTime := p.CheckinTime
		if checkinTime.IsZero() {
			checkinTime = time.Now()
		}
		ev := models.Event{
			Ref:         refOrNew(p.EventRef),
			RoomID:      room.ID,
			HotelID:     room.HotelID,
			Type:        models.EventCheckin,
			CheckinTime: checkinTime,
			StaffID:     p.StaffID,
		}
		if p.Session != nil {
			ev.Note = p.Session.Notes
		}
		if err := tx.Create(&ev).Error; err != nil {
			return fmt.Errorf("create checkin event: %w", err)
		}
		return setStatus(tx, room.ID, next.Status)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRoom(ctx, roomID)
}

func (s *RoomService) CheckOut(ctx context.Context, roomID uint, p models.CheckoutPayload) (*models.Room, error) {
	if p.Type != models.EventCheckout && p.Type != models.EventNotPay {
		p.Type = models.EventCheckout
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := loadRoom(tx, roomID, true)
		if err != nil {
			return err
		}
		next, err := roomstate.Attempt(room, roomstate.ActionCheckOut)
		if err != nil {
			return err
		}

		open := openCheckin(room, p.CheckinRef)
		if open == nil {
			return fmt.Errorf("room %d: %w", roomID, ErrNoActiveStay)
		}

		checkoutTime := p.CheckoutTime
		if checkoutTime.IsZero() {
			checkoutTime = time.Now()
		}
		payment := max(p.Payment, 0)

		if err := tx.Model(&models.Event{}).
			Where("id = ?", open.ID).
			Updates(map[string]interface{}{
				"checkout_time": checkoutTime,
				"payment":       payment,
			}).Error; err != nil {
			return fmt.Errorf("close checkin event: %w", err)
		}

		terminal := models.Event{
			Ref:          refOrNew(p.EventRef),
			RoomID:       room.ID,
			HotelID:      room.HotelID,
			Type:         p.Type,
			CheckinTime:  open.CheckinTime,
			CheckoutTime: &checkoutTime,
			Payment:      payment,
			StaffID:      p.StaffID,
		}
		if err := tx.Create(&terminal).Error; err != nil {
			return fmt.Errorf("create %s event: %w", p.Type, err)
		}
		return setStatus(tx, room.ID, next.Status)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRoom(ctx, roomID)
}

// Clean appends no event; the status change is kept in room_status_logs.
func (s *RoomService) Clean(ctx context.Context, roomID uint, p models.CleanPayload) (*models.Room, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := loadRoom(tx, roomID, true)
		if err != nil {
			return err
		}
		next, err := roomstate.Attempt(room, roomstate.ActionClean)
		if err != nil {
			return err
		}
		if err := logStatus(tx, room, next.Status, p.StaffID, p.Note); err != nil {
			return err
		}
		return setStatus(tx, room.ID, next.Status)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRoom(ctx, roomID)
}

// UpdateStatus supports the maintenance toggle only: into maintenance from any
// status and back to available.
func (s *RoomService) UpdateStatus(ctx context.Context, roomID uint, p models.StatusPayload) (*models.Room, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := loadRoom(tx, roomID, true)
		if err != nil {
			return err
		}
		next, err := roomstate.Attempt(room, roomstate.ActionMaintenance)
		if err != nil {
			return err
		}
		if p.Status != "" && p.Status != next.Status {
			return &roomstate.TransitionError{RoomID: room.ID, From: room.Status, Action: roomstate.ActionMaintenance}
		}
		if err := logStatus(tx, room, next.Status, p.StaffID, p.Note); err != nil {
			return err
		}
		return setStatus(tx, room.ID, next.Status)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRoom(ctx, roomID)
}

// Transfer closes the source stay with a zero payment and opens one on the
// target carrying the original checkin time.
func (s *RoomService) Transfer(ctx context.Context, sourceID uint, p models.TransferPayload) (*models.Room, *models.Room, error) {
	if sourceID == p.TargetID {
		return nil, nil, &roomstate.TransitionError{RoomID: sourceID, From: models.RoomActive, Action: roomstate.ActionTransferIn}
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock in id order
		firstID, secondID := sourceID, p.TargetID
		if firstID > secondID {
			firstID, secondID = secondID, firstID
		}
		first, err := loadRoom(tx, firstID, true)
		if err != nil {
			return err
		}
		second, err := loadRoom(tx, secondID, true)
		if err != nil {
			return err
		}
		src, dst := first, second
		if src.ID != sourceID {
			src, dst = second, first
		}

		srcNext, err := roomstate.Attempt(src, roomstate.ActionTransferOut)
		if err != nil {
			return err
		}
		dstNext, err := roomstate.Attempt(dst, roomstate.ActionTransferIn)
		if err != nil {
			return err
		}

		open := openCheckin(src, "")
		if open == nil {
			return fmt.Errorf("room %d: %w", sourceID, ErrNoActiveStay)
		}

		at := p.TransferTime
		if at.IsZero() {
			at = time.Now()
		}
		outNote := strings.TrimSpace(fmt.Sprintf("transferred to room %s. %s", dst.RoomNumber, p.Note))
		if err := tx.Model(&models.Event{}).
			Where("id = ?", open.ID).
			Updates(map[string]interface{}{
				"checkout_time": at,
				"payment":       0,
				"note":          outNote,
			}).Error; err != nil {
			return fmt.Errorf("close source stay: %w", err)
		}

		in := models.Event{
			Ref:         refOrNew(p.EventRef),
			RoomID:      dst.ID,
			HotelID:     dst.HotelID,
			Type:        models.EventCheckin,
			CheckinTime: open.CheckinTime,
			StaffID:     p.StaffID,
			Note:        strings.TrimSpace(fmt.Sprintf("transferred from room %s. %s", src.RoomNumber, p.Note)),
		}
		if err := tx.Create(&in).Error; err != nil {
			return fmt.Errorf("open target stay: %w", err)
		}

		if err := setStatus(tx, src.ID, srcNext.Status); err != nil {
			return err
		}
		return setStatus(tx, dst.ID, dstNext.Status)
	})
	if err != nil {
		return nil, nil, err
	}

	src, err := s.GetRoom(ctx, sourceID)
	if err != nil {
		return nil, nil, err
	}
	dst, err := s.GetRoom(ctx, p.TargetID)
	if err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

// RoomHistory pages over terminal (checkout / notpay) events, newest first.
func (s *RoomService) RoomHistory(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
	q.Normalize()

	base := func() *gorm.DB {
		db := s.DB.WithContext(ctx).
			Table("room_events").
			Joins("JOIN rooms ON rooms.id = room_events.room_id").
			Where("room_events.type IN ?", []models.EventType{models.EventCheckout, models.EventNotPay})
		if q.HotelID != 0 {
			db = db.Where("room_events.hotel_id = ?", q.HotelID)
		}
		if q.RoomID != 0 {
			db = db.Where("room_events.room_id = ?", q.RoomID)
		}
		return db
	}

	page := &models.HistoryPage{Records: []models.HistoryRecord{}, Page: q.Page, Limit: q.Limit}

	if err := base().Count(&page.Total).Error; err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}
	if err := base().Select("COALESCE(SUM(room_events.payment), 0)").Scan(&page.TotalPayment).Error; err != nil {
		return nil, fmt.Errorf("sum history: %w", err)
	}
	if err := base().
		Select("room_events.*, rooms.room_number").
		Order("room_events.checkout_time DESC, room_events.id DESC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Scan(&page.Records).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return page, nil
}

func loadRoom(db *gorm.DB, roomID uint, lock bool) (*models.Room, error) {
	q := db.Preload("Events", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var room models.Room
	if err := q.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("room %d: %w", roomID, backend.ErrNotFound)
		}
		return nil, err
	}
	return &room, nil
}

func setStatus(tx *gorm.DB, roomID uint, status models.RoomStatus) error {
	if err := tx.Model(&models.Room{}).Where("id = ?", roomID).Update("status", status).Error; err != nil {
		return fmt.Errorf("update room %d status: %w", roomID, err)
	}
	return nil
}

func logStatus(tx *gorm.DB, room *models.Room, to models.RoomStatus, staffID, note string) error {
	entry := models.RoomStatusLog{
		RoomID:  room.ID,
		From:    room.Status,
		To:      to,
		StaffID: staffID,
		Note:    note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("log room %d status: %w", room.ID, err)
	}
	return nil
}

// openCheckin finds the open stay by ref, or the latest open one when ref is
// empty or unknown.
func openCheckin(room *models.Room, ref string) *models.Event {
	if ref != "" {
		for i := range room.Events {
			ev := &room.Events[i]
			if ev.Ref == ref && ev.Type == models.EventCheckin && ev.CheckoutTime == nil {
				return ev
			}
		}
	}
	if i := room.OpenCheckin(); i >= 0 {
		return &room.Events[i]
	}
	return nil
}

func refOrNew(ref string) string {
	if ref = strings.TrimSpace(ref); ref != "" {
		return ref
	}
	return uuid.NewString()
}
