package core

import (
	"github.com/goccy/go-json"

	"github.com/dkeye/PrivChat/internal/domain"
)

// Outbound event types.
const (
	EventJoinStatus       = "join_status"
	EventJoinRequest      = "join_request"
	EventRoomUsers        = "room_users"
	EventMessage          = "message"
	EventDelivered        = "delivered"
	EventSeen             = "seen"
	EventEdited           = "edited"
	EventDeleted          = "deleted"
	EventTyping           = "typing"
	EventStopTyping       = "stop_typing"
	EventRoomClosed       = "room_closed"
	EventForcedDisconnect = "forced_disconnect"
	EventNotice           = "notice"
)

// Join outcomes reported in JoinStatus.Status.
const (
	JoinOwner    = "owner"
	JoinPending  = "pending"
	JoinRestored = "restored"
	JoinApproved = "approved"
	JoinRejected = "rejected"
)

// Reasons carried by RoomClosed and ForcedDisconnect.
const (
	ReasonOwnerLeft = "owner_left"
	ReasonTakenOver = "session_taken_over"
	ReasonRejected  = "rejected"
)

type JoinStatus struct {
	Type     string          `json:"type"`
	Room     domain.RoomName `json:"room"`
	Status   string          `json:"status"`
	Username string          `json:"username,omitempty"`
	Owner    bool            `json:"owner"`
}

type JoinRequest struct {
	Type       string          `json:"type"`
	Room       domain.RoomName `json:"room"`
	Username   string          `json:"username"`
	Connection SessionID       `json:"connection"`
}

type RoomUsers struct {
	Type  string          `json:"type"`
	Room  domain.RoomName `json:"room"`
	Users []string        `json:"users"`
}

type Message struct {
	Type       string           `json:"type"`
	Room       domain.RoomName  `json:"room"`
	MessageID  domain.MessageID `json:"message_id"`
	Content    json.RawMessage  `json:"content"`
	Sender     string           `json:"sender"`
	Connection SessionID        `json:"connection"`
}

type Delivered struct {
	Type        string           `json:"type"`
	Room        domain.RoomName  `json:"room"`
	MessageID   domain.MessageID `json:"message_id"`
	DeliveredTo []string         `json:"delivered_to"`
}

type Seen struct {
	Type      string           `json:"type"`
	Room      domain.RoomName  `json:"room"`
	MessageID domain.MessageID `json:"message_id"`
	SeenBy    []string         `json:"seen_by"`
	AllSeen   bool             `json:"all_seen"`
}

type Edited struct {
	Type      string           `json:"type"`
	Room      domain.RoomName  `json:"room"`
	MessageID domain.MessageID `json:"message_id"`
	Content   json.RawMessage  `json:"content"`
}

type Deleted struct {
	Type      string           `json:"type"`
	Room      domain.RoomName  `json:"room"`
	MessageID domain.MessageID `json:"message_id"`
}

// Typing is used for both typing and stop_typing.
type Typing struct {
	Type     string          `json:"type"`
	Room     domain.RoomName `json:"room"`
	Username string          `json:"username"`
}

type RoomClosed struct {
	Type   string          `json:"type"`
	Room   domain.RoomName `json:"room"`
	Reason string          `json:"reason"`
}

type ForcedDisconnect struct {
	Type   string          `json:"type"`
	Room   domain.RoomName `json:"room,omitempty"`
	Reason string          `json:"reason"`
}

type Notice struct {
	Type    string `json:"type"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
