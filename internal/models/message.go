package models

import "time"

// Message is a chat message posted to a group. Messages are never edited.
type Message struct {
	ID        string    `db:"id" json:"id"`
	GroupID   string    `db:"group_id" json:"groupId"`
	UserID    string    `db:"user_id" json:"userId"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PostMessageInput is the body of POST /groups/:groupId/messages.
type PostMessageInput struct {
	UserID string `json:"userId" binding:"required"`
	Text   string `json:"text" binding:"required,max=4000"`
}
