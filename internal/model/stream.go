package model

const (
	UserUIDKey   = "user_uid"
	UserEmailKey = "user_email"
)

const (
	StreamActionSubscribe   = "subscribe"
	StreamActionUnsubscribe = "unsubscribe"
)

// StreamCommand is the only message a live client sends upstream: a refinement
// of its event-type subscription set.
type StreamCommand struct {
	Action     string   `json:"action"`
	EventTypes []string `json:"eventTypes"`
}
