package models

import "time"

// CallActivity represents one submitted method call against an application
type CallActivity struct {
	// Identification
	ActivityID string `json:"activity_id"` // txid:index for confirmed calls, failed:<uuid> otherwise
	AppID      uint64 `json:"app_id"`
	Contract   string `json:"contract"`

	// Transaction context
	TxID      string    `json:"tx_id"`
	Round     uint64    `json:"round"`
	Timestamp time.Time `json:"timestamp"`

	// Actor
	Sender string `json:"sender"`

	// Method invoked
	Method string `json:"method"`
	Action string `json:"action"` // OnComplete name

	// Results
	Success       bool        `json:"success"`
	ReturnValue   interface{} `json:"return_value,omitempty"`
	FailureReason string      `json:"failure_reason,omitempty"`
}

// ActivityFilter provides criteria for filtering activities
type ActivityFilter struct {
	AppID       uint64
	Method      string
	Sender      string
	SuccessOnly bool
	Limit       int
	Offset      int
}
