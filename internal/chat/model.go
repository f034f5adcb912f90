package chat

import (
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
)

// User is a chat participant.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	WorkflowState UserState `json:"workflow_state"`
}

// Group is a named set of users that can receive messages.
type Group struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	WorkflowState GroupState `json:"workflow_state"`
}

// Message is a single chat message as rendered in the list.
type Message struct {
	ID                    int64         `json:"id" validate:"required"`
	Content               string        `json:"content"`
	WorkflowState         MessageState  `json:"workflow_state" validate:"known_state"`
	CreatedAt             time.Time     `json:"created_at"`
	SenderID              int64         `json:"sender_id" validate:"required"`
	SenderName            string        `json:"sender_name" validate:"required"`
	SenderWorkflowState   UserState     `json:"sender_workflow_state" validate:"known_state"`
	ReceiverID            int64         `json:"receiver_id" validate:"required"`
	ReceiverName          string        `json:"receiver_name"`
	ReceiverWorkflowState ReceiverState `json:"receiver_workflow_state" validate:"known_state"`
}

type stateValue interface {
	Valid() bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("known_state", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(stateValue)
		return ok && s.Valid()
	})
	return v
}

// Validate checks that m has one sender, one receiver and known states.
func (m Message) Validate() error {
	return validate.Struct(m)
}

// Deleted reports whether the message has been deleted.
func (m Message) Deleted() bool {
	return m.WorkflowState == MessageDeleted
}

var lastLocalID atomic.Int64

// localID returns a fresh negative id for messages the backend never
// numbered. Backend ids are positive.
func localID() int64 {
	return lastLocalID.Add(-1)
}

// SampleMessages returns two placeholder messages for demos and screenshots,
// stamped with the given time. They carry local ids so inbound messages are
// never mistaken for duplicates of them.
func SampleMessages(now time.Time) []Message {
	base := Message{
		WorkflowState:         MessageCreated,
		CreatedAt:             now,
		SenderID:              1,
		SenderName:            "sudosanam",
		SenderWorkflowState:   UserActive,
		ReceiverID:            1,
		ReceiverName:          "hello",
		ReceiverWorkflowState: ReceiverState(UserActive),
	}

	first := base
	first.ID = localID()
	first.Content = "Hey meet me at the spot"

	second := base
	second.ID = localID()
	second.Content = "It is a long established fact that a reader will be distracted by the readable content of a page when looking at its layout. The point of using Lorem Ipsum is that"

	return []Message{first, second}
}
