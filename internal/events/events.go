package events

import (
	"time"

	"talent2income_backend/internal/models"
)

const (
	NameMessageSent      = "message.sent"
	NameUserTyping       = "user.typing"
	NameJobAssigned      = "job.assigned"
	NameJobStatusChanged = "job.status_changed"
	NamePaymentHeld      = "payment.held"
	NamePaymentReleased  = "payment.released"
	NamePaymentRefunded  = "payment.refunded"
	NamePaymentDisputed  = "payment.disputed"
	NameReviewCreated    = "review.created"
	NameUserRegistered   = "user.registered"
)

// Event - доменное событие для доставки во внешние каналы (почта, realtime)
type Event interface {
	EventName() string
	// Recipients - пользователи, которым адресовано событие
	Recipients() []uint64
}

type MessageSent struct {
	MessageID       uint64    `json:"message_id"`
	SenderID        uint64    `json:"sender_id"`
	RecipientID     uint64    `json:"recipient_id"`
	JobID           *uint64   `json:"job_id,omitempty"`
	ConversationKey string    `json:"conversation_key"`
	Content         string    `json:"content"`
	SentAt          time.Time `json:"sent_at"`
}

func (MessageSent) EventName() string      { return NameMessageSent }
func (e MessageSent) Recipients() []uint64 { return []uint64{e.RecipientID} }

// UserTyping не сохраняется, только транслируется собеседнику
type UserTyping struct {
	SenderID        uint64    `json:"sender_id"`
	RecipientID     uint64    `json:"recipient_id"`
	ConversationKey string    `json:"conversation_key"`
	At              time.Time `json:"at"`
}

func (UserTyping) EventName() string      { return NameUserTyping }
func (e UserTyping) Recipients() []uint64 { return []uint64{e.RecipientID} }

type JobAssigned struct {
	JobID      uint64 `json:"job_id"`
	OwnerID    uint64 `json:"owner_id"`
	AssigneeID uint64 `json:"assignee_id"`
	Title      string `json:"title"`
}

func (JobAssigned) EventName() string      { return NameJobAssigned }
func (e JobAssigned) Recipients() []uint64 { return []uint64{e.AssigneeID} }

type JobStatusChanged struct {
	JobID      uint64           `json:"job_id"`
	OwnerID    uint64           `json:"owner_id"`
	AssignedTo *uint64          `json:"assigned_to,omitempty"`
	From       models.JobStatus `json:"from"`
	To         models.JobStatus `json:"to"`
}

func (JobStatusChanged) EventName() string { return NameJobStatusChanged }
func (e JobStatusChanged) Recipients() []uint64 {
	out := []uint64{e.OwnerID}
	if e.AssignedTo != nil && *e.AssignedTo != e.OwnerID {
		out = append(out, *e.AssignedTo)
	}
	return out
}

// PaymentEvent - общие поля событий платежа
type PaymentEvent struct {
	PaymentID uint64  `json:"payment_id"`
	JobID     uint64  `json:"job_id"`
	PayerID   uint64  `json:"payer_id"`
	PayeeID   uint64  `json:"payee_id"`
	Amount    float64 `json:"amount"`
}

func (e PaymentEvent) Recipients() []uint64 { return []uint64{e.PayerID, e.PayeeID} }

func NewPaymentEvent(p *models.Payment) PaymentEvent {
	return PaymentEvent{PaymentID: p.ID, JobID: p.JobID, PayerID: p.PayerID, PayeeID: p.PayeeID, Amount: p.Amount}
}

// PaymentHeld - средства получены платформой и удерживаются
type PaymentHeld struct{ PaymentEvent }

func (PaymentHeld) EventName() string { return NamePaymentHeld }

type PaymentReleased struct{ PaymentEvent }

func (PaymentReleased) EventName() string { return NamePaymentReleased }

type PaymentRefunded struct{ PaymentEvent }

func (PaymentRefunded) EventName() string { return NamePaymentRefunded }

type PaymentDisputed struct {
	PaymentEvent
	OpenedBy uint64 `json:"opened_by"`
}

func (PaymentDisputed) EventName() string { return NamePaymentDisputed }

type ReviewCreated struct {
	ReviewID   uint64 `json:"review_id"`
	JobID      uint64 `json:"job_id"`
	ReviewerID uint64 `json:"reviewer_id"`
	RevieweeID uint64 `json:"reviewee_id"`
	Rating     int    `json:"rating"`
}

func (ReviewCreated) EventName() string      { return NameReviewCreated }
func (e ReviewCreated) Recipients() []uint64 { return []uint64{e.RevieweeID} }

type UserRegistered struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func (UserRegistered) EventName() string      { return NameUserRegistered }
func (e UserRegistered) Recipients() []uint64 { return []uint64{e.UserID} }
