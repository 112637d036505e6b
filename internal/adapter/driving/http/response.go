package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/dkindler/talerpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SettingsResponse is the configured-state view of the settings record.
// Secrets are reported as booleans and never echoed back.
type SettingsResponse struct {
	BaseURL     string `json:"base_url"`
	Username    string `json:"username"`
	Instance    string `json:"instance"`
	HasPassword bool   `json:"has_password"`
	HasToken    bool   `json:"has_token"`
}

// NoticeResponse is the JSON representation of one user-facing notice.
type NoticeResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// SaveResponse is the result of one settings save call.
type SaveResponse struct {
	Saved    bool             `json:"saved"`
	Settings SettingsResponse `json:"settings"`
	Notices  []NoticeResponse `json:"notices"`
}

// CreateOrderRequest is the request body for order creation.
type CreateOrderRequest struct {
	Amount  string `json:"amount"`
	Summary string `json:"summary"`
}

// CreateOrderResponse carries the pay URI of a freshly created order.
type CreateOrderResponse struct {
	PayURI string `json:"taler_pay_uri"`
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toSettingsResponse(settings model.Settings) SettingsResponse {
	return SettingsResponse{
		BaseURL:     settings[model.KeyBaseURL],
		Username:    settings[model.KeyUsername],
		Instance:    settings[model.KeyInstance],
		HasPassword: settings[model.KeyPassword] != "",
		HasToken:    settings[model.KeyToken] != "",
	}
}

func toNoticeResponses(notices []model.Notice) []NoticeResponse {
	out := make([]NoticeResponse, 0, len(notices))
	for _, n := range notices {
		out = append(out, NoticeResponse{
			Code:     n.Code,
			Message:  n.Message,
			Severity: string(n.Severity),
		})
	}
	return out
}
