/**
 * @description
 * This file contains the HTTP handlers for the dashboard-service's API
 * endpoints. Handlers parse incoming requests, call the application service,
 * and write JSON responses. All errors are recovered here: they become a
 * message (and, where it applies, a retryable flag) for the frontend, never a
 * crash.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain: Service logic and models.
 * - pkg/bankclient: Upstream error taxonomy.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sbf/dashboard-service/internal/app"
	"github.com/sbf/dashboard-service/pkg/bankclient"
)

// DashboardHandlers holds the application service that handlers will use.
type DashboardHandlers struct {
	service *app.Service
}

// NewDashboardHandlers creates a new instance of DashboardHandlers.
func NewDashboardHandlers(service *app.Service) *DashboardHandlers {
	return &DashboardHandlers{service: service}
}

// userSummaryResponse is the profile header payload for the dashboard.
type userSummaryResponse struct {
	DisplayName     string `json:"displayName"`
	Initials        string `json:"initials"`
	Email           string `json:"email"`
	DefaultCurrency string `json:"defaultCurrency"`
	KYCVerified     bool   `json:"kycVerified"`
}

// accountsResponse wraps the flattened overview with the counts the transfer
// form needs to decide whether it can be shown at all.
type accountsResponse struct {
	Accounts      []app.AccountView `json:"accounts"`
	EligibleCount int               `json:"eligibleCount"`
	Stale         bool              `json:"stale"`
}

// selectionUpdateRequest changes either the account-type or the account leaf
// of the selection. Exactly one field should be set.
type selectionUpdateRequest struct {
	AccountTypeID string `json:"accountTypeId,omitempty"`
	AccountID     string `json:"accountId,omitempty"`
}

// GetUserHandler returns the profile summary for the dashboard header.
func (h *DashboardHandlers) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.EnsureSnapshot(r.Context())
	if err != nil {
		h.writeUpstreamError(w, "fetch user", err)
		return
	}
	kyc := false
	if user.PersonalProfile != nil {
		kyc = user.PersonalProfile.KYCVerified
	}
	h.writeJSON(w, http.StatusOK, userSummaryResponse{
		DisplayName:     user.DisplayName(),
		Initials:        user.Initials(),
		Email:           user.Email,
		DefaultCurrency: user.DefaultCurrency,
		KYCVerified:     kyc,
	})
}

// GetAccountsHandler returns the flattened account overview.
func (h *DashboardHandlers) GetAccountsHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.EnsureSnapshot(r.Context()); err != nil {
		h.writeUpstreamError(w, "fetch accounts", err)
		return
	}
	h.writeJSON(w, http.StatusOK, accountsResponse{
		Accounts:      h.service.AccountOverview(),
		EligibleCount: h.service.EligibleAccountCount(),
		Stale:         h.service.SnapshotStale(),
	})
}

// GetSelectionHandler returns the current account selection.
func (h *DashboardHandlers) GetSelectionHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.EnsureSnapshot(r.Context()); err != nil {
		h.writeUpstreamError(w, "fetch selection", err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Selection())
}

// PutSelectionHandler applies an explicit account-type or account choice.
func (h *DashboardHandlers) PutSelectionHandler(w http.ResponseWriter, r *http.Request) {
	var req selectionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := h.service.EnsureSnapshot(r.Context()); err != nil {
		h.writeUpstreamError(w, "update selection", err)
		return
	}

	var (
		selection app.Selection
		err       error
	)
	switch {
	case req.AccountTypeID != "":
		selection, err = h.service.SetAccountType(req.AccountTypeID)
	case req.AccountID != "":
		selection, err = h.service.SetAccount(req.AccountID)
	default:
		h.writeError(w, http.StatusBadRequest, "Either accountTypeId or accountId must be provided")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, app.ErrUnknownAccountType):
			h.writeError(w, http.StatusNotFound, "Account type not found")
		case errors.Is(err, app.ErrAccountNotInSelectedType):
			h.writeError(w, http.StatusUnprocessableEntity, "Account does not belong to the selected account type")
		default:
			log.Printf("level=error component=api endpoint=put_selection err=%v", err)
			h.writeError(w, http.StatusInternalServerError, "Could not update selection")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, selection)
}

// GetTransferFormHandler returns the transient transfer-form state.
func (h *DashboardHandlers) GetTransferFormHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Form())
}

// PutTransferFormHandler stores new transfer-form field values.
func (h *DashboardHandlers) PutTransferFormHandler(w http.ResponseWriter, r *http.Request) {
	var form app.TransferForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.UpdateForm(form))
}

// SubmitTransferHandler validates the current form and submits the transfer.
func (h *DashboardHandlers) SubmitTransferHandler(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.service.SubmitTransfer(r.Context())
	if err != nil {
		if errors.Is(err, app.ErrTransferInFlight) {
			h.writeError(w, http.StatusConflict, "A transfer is already being processed")
			return
		}
		h.writeUpstreamError(w, "submit transfer", err)
		return
	}
	if !outcome.Validation.Valid {
		h.writeJSON(w, http.StatusUnprocessableEntity, outcome)
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

// RefreshHandler forces a snapshot refetch (the dashboard's Retry button).
func (h *DashboardHandlers) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.RefreshSnapshot(r.Context())
	if err != nil {
		h.writeUpstreamError(w, "refresh snapshot", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"refreshed":    true,
		"accountTypes": len(user.AccountTypes),
	})
}

// writeUpstreamError maps core-banking API failures onto the dashboard's
// error taxonomy: 404 stays 404, other upstream 4xx surface as a validation
// failure, everything else (5xx, transport) is a retryable gateway error.
func (h *DashboardHandlers) writeUpstreamError(w http.ResponseWriter, op string, err error) {
	var apiErr *bankclient.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		switch {
		case apiErr.IsNotFound():
			if message == "" {
				message = "User not found"
			}
			h.writeError(w, http.StatusNotFound, message)
		case apiErr.IsServerError():
			log.Printf("level=warn component=api op=%q upstream_status=%d msg=\"upstream server error\"", op, apiErr.StatusCode)
			h.writeError(w, http.StatusBadGateway, "Server error. Please try again later.")
		default:
			if message == "" {
				message = "Transfer failed. Please try again."
			}
			h.writeError(w, http.StatusUnprocessableEntity, message)
		}
		return
	}
	log.Printf("level=warn component=api op=%q msg=\"upstream request failed\" err=%v", op, err)
	h.writeError(w, http.StatusBadGateway, "Network error. Please check your connection.")
}

// writeJSON is a helper for writing JSON responses.
func (h *DashboardHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *DashboardHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
