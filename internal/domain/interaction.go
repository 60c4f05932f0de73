package domain

import "time"

// ChatInteraction is one logged step of a bot or web-assistant session.
type ChatInteraction struct {
	ID          int64
	SessionID   string
	Username    string
	ActionType  string
	ActionValue string
	BotResponse string
	CreatedAt   time.Time
}
