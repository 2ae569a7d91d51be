// Package domain contains core concepts of the bulletin board.
// Messages are immutable once created and owned by the group they
// were posted into.
package domain

import (
	"fmt"
	"time"
)

// NoSubject is stored in place of an empty subject.
const NoSubject = "(no subject)"

const summaryTimeLayout = "2006-01-02 15:04:05"

// Message represents one immutable posted item.
type Message struct {
	ID       int
	Sender   string
	Subject  string
	Content  string
	PostedAt time.Time
}

// NewMessage builds a message with the given allocated id. An empty subject
// is replaced by the NoSubject placeholder.
func NewMessage(id int, sender, subject, content string, postedAt time.Time) Message {
	if subject == "" {
		subject = NoSubject
	}
	return Message{
		ID:       id,
		Sender:   sender,
		Subject:  subject,
		Content:  content,
		PostedAt: postedAt,
	}
}

// Summary renders the fixed "id|sender|timestamp|subject" view used in
// notifications and backfills.
func (m Message) Summary() string {
	return fmt.Sprintf("%d|%s|%s|%s", m.ID, m.Sender, m.PostedAt.Format(summaryTimeLayout), m.Subject)
}
