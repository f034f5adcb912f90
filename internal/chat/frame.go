package chat

import (
	"encoding/json"
	"fmt"
	"time"

	perrors "github.com/parleychat/parley/internal/errors"
)

// MessageType distinguishes direct messages from group messages on the wire.
type MessageType string

const (
	MessagePrivate MessageType = "private"
	MessageGroup   MessageType = "group"

	// messageChatroom is the backend's spelling of MessageGroup.
	messageChatroom = "chatroom"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	return t == MessagePrivate || t == MessageGroup
}

// UnmarshalJSON rejects unknown message types.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == messageChatroom {
		v = string(MessageGroup)
	}
	if !MessageType(v).Valid() {
		return fmt.Errorf("unknown message type %q", v)
	}
	*t = MessageType(v)
	return nil
}

// OutboundFrame is the JSON object the composer writes to the socket.
type OutboundFrame struct {
	SenderID    int64       `json:"sender_id"`
	ReceiverID  int64       `json:"receiver_id"`
	MessageType MessageType `json:"message_type"`
	Content     string      `json:"content"`
}

// inboundFrame is the superset of fields the backend may send. The backend's
// own message type spells the receiver as recipient_id.
type inboundFrame struct {
	ID                    *int64        `json:"id"`
	Content               *string       `json:"content"`
	WorkflowState         MessageState  `json:"workflow_state"`
	CreatedAt             *time.Time    `json:"created_at"`
	SenderID              int64         `json:"sender_id"`
	SenderName            string        `json:"sender_name"`
	SenderWorkflowState   UserState     `json:"sender_workflow_state"`
	ReceiverID            *int64        `json:"receiver_id"`
	RecipientID           *int64        `json:"recipient_id"`
	ReceiverName          string        `json:"receiver_name"`
	ReceiverWorkflowState ReceiverState `json:"receiver_workflow_state"`
	MessageType           *MessageType  `json:"message_type"`
}

// DecodeFrame projects a raw inbound frame into a Message.
//
// ok is false when the frame is well-formed JSON but does not describe a
// message (acks, presence, or anything without content and a sender).
// err is non-nil only for malformed frames. The backend relays frames
// without numbering them, so a missing or zero id is replaced with a local
// negative id that never collides with a backend id.
func DecodeFrame(data []byte, received time.Time) (msg Message, ok bool, err error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{}, false, perrors.FrameDecodeFailed(err)
	}
	if len(raw) == 0 || raw[0] != '{' {
		return Message{}, false, nil
	}

	var f inboundFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Message{}, false, perrors.FrameDecodeFailed(err)
	}

	if f.Content == nil || f.SenderID == 0 {
		return Message{}, false, nil
	}

	id := localID()
	if f.ID != nil && *f.ID != 0 {
		id = *f.ID
	}

	msg = Message{
		ID:                    id,
		Content:               *f.Content,
		WorkflowState:         f.WorkflowState,
		CreatedAt:             received,
		SenderID:              f.SenderID,
		SenderName:            f.SenderName,
		SenderWorkflowState:   f.SenderWorkflowState,
		ReceiverName:          f.ReceiverName,
		ReceiverWorkflowState: f.ReceiverWorkflowState,
	}
	switch {
	case f.ReceiverID != nil:
		msg.ReceiverID = *f.ReceiverID
	case f.RecipientID != nil:
		msg.ReceiverID = *f.RecipientID
	}
	if f.CreatedAt != nil && !f.CreatedAt.IsZero() {
		msg.CreatedAt = *f.CreatedAt
	}
	if msg.WorkflowState == "" {
		msg.WorkflowState = MessageCreated
	}
	if msg.SenderName == "" {
		msg.SenderName = fmt.Sprintf("user %d", msg.SenderID)
	}
	if msg.SenderWorkflowState == "" {
		msg.SenderWorkflowState = UserActive
	}
	if msg.ReceiverWorkflowState == "" {
		msg.ReceiverWorkflowState = ReceiverState(UserActive)
	}
	if msg.ReceiverName == "" && msg.ReceiverID != 0 {
		msg.ReceiverName = fmt.Sprintf("user %d", msg.ReceiverID)
		if f.MessageType != nil && *f.MessageType == MessageGroup {
			msg.ReceiverName = fmt.Sprintf("group %d", msg.ReceiverID)
		}
	}

	if err := msg.Validate(); err != nil {
		return Message{}, false, perrors.FrameDecodeFailed(err)
	}
	return msg, true, nil
}
