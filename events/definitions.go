package events

import "time"

// Amounts are minor units of the base currency.

type AllowanceGrantedEvent struct {
	BaseEvent
	UserID      int       `json:"userId"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Total       int64     `json:"total"`
}

type AllowanceConsumedEvent struct {
	BaseEvent
	Requested int64 `json:"requested"`
	Covered   int64 `json:"covered"`
	Uncovered int64 `json:"uncovered"`
	Remaining int64 `json:"remaining"`
}
