package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"hotel-frontdesk/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// Room transition subjects
const (
	RoomCheckedIn     = "rooms.checked_in"
	RoomCheckedOut    = "rooms.checked_out"
	RoomCleaned       = "rooms.cleaned"
	RoomStatusChanged = "rooms.status_changed"
	RoomTransferred   = "rooms.transferred"
)

// RoomEvent is published after the backend confirmed a transition.
type RoomEvent struct {
	RoomID     uint      `json:"room_id"`
	HotelID    uint      `json:"hotel_id"`
	RoomNumber string    `json:"room_number"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	EventRef   string    `json:"event_ref,omitempty"`
	StaffID    string    `json:"staff_id,omitempty"`
	Payment    int64     `json:"payment,omitempty"`
	TargetID   uint      `json:"target_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("hotel-frontdesk"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.WithContext(ctx).Debug("publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

// NopPublisher drops events. Used when NATS_URL is unset.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                      { return nil }
