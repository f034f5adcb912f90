package chat

// Identity is the sender/receiver pair stamped on outbound frames.
type Identity struct {
	SenderID   int64
	ReceiverID int64
}

// Conn is the part of the realtime connection the composer needs.
type Conn interface {
	IsOpen() bool
	SendJSON(v any) bool
}

// NewOutboundFrame builds the private-message frame for content.
func NewOutboundFrame(content string, id Identity) OutboundFrame {
	return OutboundFrame{
		SenderID:    id.SenderID,
		ReceiverID:  id.ReceiverID,
		MessageType: MessagePrivate,
		Content:     content,
	}
}

// Submit sends buffer as a single private frame when it is non-empty and
// the connection is open. It reports whether a frame was written; in every
// other case nothing is sent and the buffer is left to the caller.
func Submit(buffer string, conn Conn, id Identity) bool {
	if buffer == "" || conn == nil || !conn.IsOpen() {
		return false
	}
	return conn.SendJSON(NewOutboundFrame(buffer, id))
}
