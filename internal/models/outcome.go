package models

import "time"

// CallOutcome is handed to post-call services after a submission settles
type CallOutcome struct {
	Contract string
	AppID    uint64
	Method   string
	Action   string
	Sender   string

	TxIDs []string
	Round uint64
	// GroupIndex is the position of the call among the method calls of its group
	GroupIndex int
	Time  time.Time

	// Created is set when the call created the application
	Created           bool
	AppAddress        string
	TemplateVariables map[string]interface{}

	Success       bool
	ReturnValue   interface{}
	FailureReason string
}

// TxID returns the id of the last transaction in the group
func (o *CallOutcome) TxID() string {
	if len(o.TxIDs) == 0 {
		return ""
	}
	return o.TxIDs[len(o.TxIDs)-1]
}
