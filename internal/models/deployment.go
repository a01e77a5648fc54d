package models

import "time"

// Deployment represents an application created through the client
type Deployment struct {
	// Identification
	AppID      uint64 `json:"app_id"`
	AppAddress string `json:"app_address"`
	Contract   string `json:"contract"`

	// Creation metadata
	CreatedAtRound uint64    `json:"created_at_round"`
	CreatedAt      time.Time `json:"created_at"`
	TxID           string    `json:"tx_id"`
	Creator        string    `json:"creator"`
	Method         string    `json:"method"`

	// Template values substituted into the approval program
	TemplateVariables map[string]interface{} `json:"template_variables,omitempty"`
}
