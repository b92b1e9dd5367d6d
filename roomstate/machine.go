// Package roomstate holds the room lifecycle as a single transition table.
package roomstate

import (
	"errors"
	"fmt"

	"hotel-frontdesk/models"
)

type Action string

const (
	ActionCheckIn     Action = "checkin"
	ActionCheckOut    Action = "checkout"
	ActionClean       Action = "clean"
	ActionMaintenance Action = "maintenance"
	ActionTransferOut Action = "transfer_out"
	ActionTransferIn  Action = "transfer_in"
)

var ErrInvalidTransition = errors.New("invalid room transition")

// TransitionError reports an action that is not allowed from the room's
// current status.
type TransitionError struct {
	RoomID uint
	From   models.RoomStatus
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("room %d: cannot %s while %s", e.RoomID, e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Maintenance toggles: entering from any state, leaving back to available.
var transitions = map[models.RoomStatus]map[Action]models.RoomStatus{
	models.RoomAvailable: {
		ActionCheckIn:     models.RoomActive,
		ActionTransferIn:  models.RoomActive,
		ActionMaintenance: models.RoomMaintenance,
	},
	models.RoomActive: {
		ActionCheckOut:    models.RoomDirty,
		ActionTransferOut: models.RoomDirty,
		ActionMaintenance: models.RoomMaintenance,
	},
	models.RoomDirty: {
		ActionClean:       models.RoomAvailable,
		ActionMaintenance: models.RoomMaintenance,
	},
	models.RoomMaintenance: {
		ActionMaintenance: models.RoomAvailable,
	},
}

// Next returns the status reached by applying action in from.
func Next(from models.RoomStatus, action Action) (models.RoomStatus, bool) {
	to, ok := transitions[from][action]
	return to, ok
}

// Attempt validates action against the room's status and returns a copy of
// the room in its new status. The input room is never modified.
func Attempt(room *models.Room, action Action) (*models.Room, error) {
	if room == nil {
		return nil, fmt.Errorf("attempt %s: %w", action, ErrInvalidTransition)
	}
	from := room.Status
	if from == "" {
		from = models.RoomAvailable
	}
	to, ok := Next(from, action)
	if !ok {
		return nil, &TransitionError{RoomID: room.ID, From: from, Action: action}
	}
	next := room.Clone()
	next.Status = to
	return next, nil
}

// Allowed lists the actions valid from status, for room-board rendering.
func Allowed(status models.RoomStatus) []Action {
	out := make([]Action, 0, 3)
	for _, a := range []Action{ActionCheckIn, ActionCheckOut, ActionClean, ActionMaintenance, ActionTransferOut} {
		if _, ok := transitions[status][a]; ok {
			out = append(out, a)
		}
	}
	return out
}
