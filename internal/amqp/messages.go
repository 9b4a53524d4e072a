package amqp

import (
	"encoding/json"
	"time"
)

// RecordSyncMessage asks the worker to mirror one record to the household
// ledger. It carries only the kind and id; the worker fetches the full
// record from the database.
type RecordSyncMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(kind, id string) *RecordSyncMessage {
	return &RecordSyncMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DutyReminderMessage notifies a member of an upcoming market duty.
type DutyReminderMessage struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	DutyDate  string    `json:"duty_date"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDutyReminderMessage(userID, email, dutyDate string) *DutyReminderMessage {
	return &DutyReminderMessage{
		UserID:    userID,
		Email:     email,
		DutyDate:  dutyDate,
		Timestamp: time.Now(),
	}
}

func (m *DutyReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DutyReminderMessageFromJSON(data []byte) (*DutyReminderMessage, error) {
	var msg DutyReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
