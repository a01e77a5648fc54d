package client

import (
	"fmt"
	"regexp"
	"strconv"

	"arc56/internal/metrics"
)

var (
	txIDPattern  = regexp.MustCompile(`transaction (\S+):`)
	appIDPattern = regexp.MustCompile(`app=(\d+)`)
	pcPattern    = regexp.MustCompile(`pc=(\d+)`)
)

// TranslatedExecutionError is a failed execution mapped to the contract's error message
type TranslatedExecutionError struct {
	Contract string
	AppID    uint64
	TxID     string
	PC       uint64
	Message  string
	Err      error
}

func (e *TranslatedExecutionError) Error() string {
	return fmt.Sprintf("Runtime error when executing %s (appId: %d) in transaction %s: %s",
		e.Contract, e.AppID, e.TxID, e.Message)
}

func (e *TranslatedExecutionError) Unwrap() error {
	return e.Err
}

// translate maps an execution failure of this client's application to its source message.
// Anything it cannot attribute is returned unchanged.
func (c *AppClient) translate(err error) error {
	detail := err.Error()

	appMatch := appIDPattern.FindStringSubmatch(detail)
	if appMatch == nil {
		return err
	}
	appID, perr := strconv.ParseUint(appMatch[1], 10, 64)
	if perr != nil || appID != c.appID {
		return err
	}

	pcMatch := pcPattern.FindStringSubmatch(detail)
	if pcMatch == nil {
		return err
	}
	pc, perr := strconv.ParseUint(pcMatch[1], 10, 64)
	if perr != nil {
		return err
	}

	message, ok := c.contract.ErrorMessage(pc)
	if !ok || message == "" {
		return err
	}

	var txID string
	if m := txIDPattern.FindStringSubmatch(detail); m != nil {
		txID = m[1]
	}

	metrics.TranslatedErrors.Inc()
	c.log.Debugw("Translated execution failure",
		"app_id", appID,
		"pc", pc,
		"tx_id", txID,
	)
	return &TranslatedExecutionError{
		Contract: c.contract.Name,
		AppID:    appID,
		TxID:     txID,
		PC:       pc,
		Message:  message,
		Err:      err,
	}
}
