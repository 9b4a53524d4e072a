package amqp

import "testing"

func TestRecordSyncMessageRoundTrip(t *testing.T) {
	msg := NewRecordSyncMessage("expense", "abc-123")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := RecordSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("RecordSyncMessageFromJSON() error = %v", err)
	}
	if got.Kind != "expense" || got.ID != "abc-123" {
		t.Errorf("round trip = %+v, want kind=expense id=abc-123", got)
	}
}

func TestDutyReminderMessageRoundTrip(t *testing.T) {
	msg := NewDutyReminderMessage("u1", "anna@example.com", "2024-03-15")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := DutyReminderMessageFromJSON(body)
	if err != nil {
		t.Fatalf("DutyReminderMessageFromJSON() error = %v", err)
	}
	if got.UserID != "u1" || got.Email != "anna@example.com" || got.DutyDate != "2024-03-15" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestRecordSyncMessageRejectsGarbage(t *testing.T) {
	if _, err := RecordSyncMessageFromJSON([]byte("not json")); err == nil {
		t.Error("RecordSyncMessageFromJSON(garbage) error = nil, want error")
	}
}
