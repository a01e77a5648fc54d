package models

// ContractResponse describes the loaded contract and the application it is bound to
type ContractResponse struct {
	Name              string                      `json:"name"`
	Description       string                      `json:"description,omitempty"`
	Arcs              []int                       `json:"arcs"`
	AppID             uint64                      `json:"app_id"`
	AppAddress        string                      `json:"app_address,omitempty"`
	Methods           int                         `json:"methods"`
	Structs           []string                    `json:"structs"`
	TemplateVariables map[string]string           `json:"template_variables,omitempty"`
	Storage           map[string]StorageNamespace `json:"storage"`
	StorageCollisions []string                    `json:"storage_collisions,omitempty"`
}

// StorageNamespace lists the declared keys and maps of one namespace
type StorageNamespace struct {
	Keys []string `json:"keys"`
	Maps []string `json:"maps"`
}

// MethodResponse describes one ABI method
type MethodResponse struct {
	Name        string   `json:"name"`
	Signature   string   `json:"signature"`
	Description string   `json:"description,omitempty"`
	ReadOnly    bool     `json:"readonly"`
	Create      []string `json:"create"`
	Call        []string `json:"call"`
	Returns     string   `json:"returns"`
}

// StateValueResponse is a decoded storage read
type StateValueResponse struct {
	Name      string      `json:"name"`
	Namespace string      `json:"namespace"`
	Value     interface{} `json:"value"`
}

// ParamsResponse is the transaction parameter set built for a method call
type ParamsResponse struct {
	Method    string   `json:"method"`
	Signature string   `json:"signature"`
	Sender    string   `json:"sender"`
	AppID     uint64   `json:"app_id"`
	Args      []string `json:"args"` // hex encoded ABI arguments; references and transactions as text
}

// CallResponse is the result of a submitted call
type CallResponse struct {
	TxIDs       []string    `json:"tx_ids"`
	Round       uint64      `json:"round"`
	ReturnValue interface{} `json:"return_value,omitempty"`
}

// PaginationMeta represents pagination metadata
type PaginationMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// ErrorResponse is the body returned on failure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
