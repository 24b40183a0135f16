package domain

import "errors"

// MessageID is generated by the client and is opaque to the relay.
type MessageID string

var (
	ErrUnknownMessage   = errors.New("unknown message")
	ErrDuplicateMessage = errors.New("message id already used in room")
)

func (id MessageID) Validate() error {
	if len(id) == 0 {
		return ErrMissingFields
	}
	if len(id) > MaxMessageIDLen {
		return ErrMessageIDTooLong
	}
	return nil
}

// MessageStatus is a read-only view of the delivery ledger of one message.
type MessageStatus struct {
	Room        RoomName
	ID          MessageID
	Sender      string
	DeliveredTo []string
	SeenBy      []string
}
