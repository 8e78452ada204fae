/**
 * @description
 * This file defines the transfer DTOs exchanged with the core-banking API and
 * the validation verdict produced before any submission. A TransferRequest is
 * built fresh per attempt and never persisted.
 */

package domain

import "encoding/json"

// TransferRequest is the payload POSTed to the core-banking transfer endpoint.
// The upstream contract carries only the amount; source and destination are
// implicit in the customer's session on the remote side.
type TransferRequest struct {
	Amount float64 `json:"amount"`
}

// TransferResponse is the core-banking API's answer to a transfer submission.
// It is opaque beyond the success flag, message and optional transaction id;
// Extra preserves any additional fields for the frontend to display verbatim.
type TransferResponse struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message"`
	TransactionID string                 `json:"transactionId,omitempty"`
	Extra         map[string]interface{} `json:"-"`
}

// UnmarshalJSON keeps any fields beyond the known trio in Extra so the
// frontend can render the raw server response verbatim.
func (t *TransferResponse) UnmarshalJSON(data []byte) error {
	type known struct {
		Success       bool   `json:"success"`
		Message       string `json:"message"`
		TransactionID string `json:"transactionId"`
	}
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "success")
	delete(raw, "message")
	delete(raw, "transactionId")

	t.Success = k.Success
	t.Message = k.Message
	t.TransactionID = k.TransactionID
	if len(raw) > 0 {
		t.Extra = raw
	} else {
		t.Extra = nil
	}
	return nil
}

// MarshalJSON re-emits the preserved extra fields alongside the known ones.
func (t TransferResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(t.Extra)+3)
	for k, v := range t.Extra {
		out[k] = v
	}
	out["success"] = t.Success
	out["message"] = t.Message
	if t.TransactionID != "" {
		out["transactionId"] = t.TransactionID
	}
	return json.Marshal(out)
}

// Reason codes for a failed local validation, in the order the checks run.
const (
	ReasonInvalidAmount       = "invalid_amount"
	ReasonAccountsNotSelected = "accounts_not_selected"
	ReasonSameAccount         = "same_account"
	ReasonSourceNotFound      = "source_account_not_found"
	ReasonInsufficientBalance = "insufficient_balance"
	ReasonBelowMinimum        = "below_minimum"
	ReasonCurrencyMismatch    = "currency_mismatch"
)

// ValidationResult is the verdict of the local transfer validator. Exactly one
// of Valid or the Reason fields is meaningful: when Valid is true, Amount holds
// the parsed transfer amount; otherwise Reason and Message describe the first
// failing check, with Available/FromCurrency/ToCurrency populated where the
// reason warrants it.
type ValidationResult struct {
	Valid        bool    `json:"valid"`
	Amount       float64 `json:"amount,omitempty"`
	Reason       string  `json:"reason,omitempty"`
	Message      string  `json:"message,omitempty"`
	Available    float64 `json:"available,omitempty"`
	FromCurrency string  `json:"fromCurrency,omitempty"`
	ToCurrency   string  `json:"toCurrency,omitempty"`
}
