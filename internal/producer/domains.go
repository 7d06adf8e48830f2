package producer

import "spendtrail/internal/event"

// Per-domain event definitions. Each domain service owns exactly one of
// these; the topic comes from configuration so deployments can rename
// streams without code changes.

// Expense events additionally require an amount in the payload.
func Expense(topic string) Definition {
	return Definition{
		Topic:     topic,
		EventType: "Expense",
		Validate:  event.RequirePayloadFields("amount"),
	}
}

func Category(topic string) Definition {
	return Definition{
		Topic:     topic,
		EventType: "Category",
	}
}

// Bill events carry a due date so reminder/overdue consumers can schedule.
func Bill(topic string) Definition {
	return Definition{
		Topic:     topic,
		EventType: "Bill",
		Validate:  event.RequirePayloadFields("dueDate"),
	}
}

func Notification(topic string) Definition {
	return Definition{
		Topic:     topic,
		EventType: "Notification",
	}
}

func Friendship(topic string) Definition {
	return Definition{
		Topic:     topic,
		EventType: "Friendship",
	}
}
