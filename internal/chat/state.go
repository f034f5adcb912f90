package chat

import (
	"encoding/json"
	"fmt"
)

// UserState is the lifecycle state of a user account.
type UserState string

const (
	UserActive    UserState = "active"
	UserSuspended UserState = "suspended"
	UserDeleted   UserState = "deleted"
)

// Valid reports whether s is a known user state.
func (s UserState) Valid() bool {
	switch s {
	case UserActive, UserSuspended, UserDeleted:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown states.
func (s *UserState) UnmarshalJSON(data []byte) error {
	return unmarshalState(data, (*string)(s), func(v string) bool { return UserState(v).Valid() }, "user")
}

// GroupState is the lifecycle state of a group.
type GroupState string

const (
	GroupActive  GroupState = "active"
	GroupDeleted GroupState = "deleted"
)

// Valid reports whether s is a known group state.
func (s GroupState) Valid() bool {
	return s == GroupActive || s == GroupDeleted
}

// UnmarshalJSON rejects unknown states.
func (s *GroupState) UnmarshalJSON(data []byte) error {
	return unmarshalState(data, (*string)(s), func(v string) bool { return GroupState(v).Valid() }, "group")
}

// MessageState is the lifecycle state of a message.
type MessageState string

const (
	MessageCreated MessageState = "created"
	MessageDeleted MessageState = "deleted"
)

// Valid reports whether s is a known message state.
func (s MessageState) Valid() bool {
	return s == MessageCreated || s == MessageDeleted
}

// UnmarshalJSON rejects unknown states.
func (s *MessageState) UnmarshalJSON(data []byte) error {
	return unmarshalState(data, (*string)(s), func(v string) bool { return MessageState(v).Valid() }, "message")
}

// ReceiverState is the state of a message receiver, which may be a user or
// a group, so it accepts the union of both sets.
type ReceiverState string

// Valid reports whether s is a known user or group state.
func (s ReceiverState) Valid() bool {
	return UserState(s).Valid() || GroupState(s).Valid()
}

// UnmarshalJSON rejects unknown states.
func (s *ReceiverState) UnmarshalJSON(data []byte) error {
	return unmarshalState(data, (*string)(s), func(v string) bool { return ReceiverState(v).Valid() }, "receiver")
}

func unmarshalState(data []byte, dst *string, valid func(string) bool, kind string) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !valid(v) {
		return fmt.Errorf("unknown %s workflow state %q", kind, v)
	}
	*dst = v
	return nil
}
