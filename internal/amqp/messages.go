package amqp

import (
	"encoding/json"
	"time"
)

// EventMessage is the lightweight wake-up for one journal row. It
// carries only identifiers; the worker fetches the full event from the
// database.
type EventMessage struct {
	EventID   int64     `json:"event_id"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEventMessage(eventID int64, kind, userID string) *EventMessage {
	return &EventMessage{
		EventID:   eventID,
		Kind:      kind,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON creates a message from JSON bytes.
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Reminder kinds.
const (
	ReminderAppointment = "appointment"
	ReminderInstallment = "installment"
)

// ReminderMessage announces a calendar item whose day has arrived: an
// appointment or an installment charge coming due. It is self-contained
// so downstream notifiers need no database access.
type ReminderMessage struct {
	Kind        string    `json:"kind"`
	EntityID    int64     `json:"entity_id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	TimeOfDay   string    `json:"time_of_day,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewAppointmentReminder(appointmentID int64, userID, title, date, timeOfDay string) *ReminderMessage {
	return &ReminderMessage{
		Kind:      ReminderAppointment,
		EntityID:  appointmentID,
		UserID:    userID,
		Title:     title,
		Date:      date,
		TimeOfDay: timeOfDay,
		Timestamp: time.Now(),
	}
}

func NewInstallmentReminder(entryID int64, userID, title, date string, amountCents int64) *ReminderMessage {
	return &ReminderMessage{
		Kind:        ReminderInstallment,
		EntityID:    entryID,
		UserID:      userID,
		Title:       title,
		Date:        date,
		AmountCents: amountCents,
		Timestamp:   time.Now(),
	}
}

func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
