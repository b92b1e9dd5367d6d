// Package session caches in-progress stays (check-in sessions) keyed by room.
package session

import (
	"context"
	"errors"
	"fmt"

	"hotel-frontdesk/models"
)

// IndexKey is the key of the room -> session map.
const IndexKey = "roomSessions"

var ErrNotFound = errors.New("checkin session not found")

type Store interface {
	Get(ctx context.Context, roomID uint) (*models.CheckinSession, error)
	Save(ctx context.Context, s *models.CheckinSession) error
	Delete(ctx context.Context, roomID uint) error
	List(ctx context.Context) (map[uint]*models.CheckinSession, error)
}

// Key is the per-room key, checkin_<roomId>.
func Key(roomID uint) string {
	return fmt.Sprintf("checkin_%d", roomID)
}

// Move re-keys the session of from under to. A missing source session is not
// an error.
func Move(ctx context.Context, st Store, from, to uint) error {
	s, err := st.Get(ctx, from)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.RoomID = to
	if err := st.Save(ctx, s); err != nil {
		return err
	}
	return st.Delete(ctx, from)
}
