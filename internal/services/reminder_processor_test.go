package services

import (
	"context"
	"testing"
	"time"
)

func TestNewReminderProcessor(t *testing.T) {
	processor := NewReminderProcessor(nil, nil)

	if processor == nil {
		t.Error("NewReminderProcessor should return non-nil processor")
	}
	if processor.storage != nil {
		t.Error("storage should be nil when passed nil")
	}
	if processor.amqpClient != nil {
		t.Error("amqpClient should be nil when passed nil")
	}
}

func TestReminderProcessor_NotInitialized(t *testing.T) {
	processor := NewReminderProcessor(nil, nil)

	_, err := processor.ProcessDueReminders(context.Background(), time.Now())
	if err == nil {
		t.Error("ProcessDueReminders should fail with nil dependencies")
	}
}
