package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
)

// Стабильные коды ошибок API.
const (
	CodeStorageRead       = "storage_read"
	CodeStorageFormat     = "storage_format"
	CodeStorageWrite      = "storage_write"
	CodeOrderNotFound     = "order_not_found"
	CodeInvalidTransition = "invalid_transition"
	CodeValidationFailed  = "validation_failed"
	CodeInvalidStatus     = "invalid_status"
	CodeInternal          = "internal"
)

type errorBody struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// classify сопоставляет ошибку домена HTTP-статусу, коду и сообщению для клиента.
// Сообщения 5xx не раскрывают пути и детали файловой системы.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, CodeOrderNotFound, "order not found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest, CodeInvalidTransition, err.Error()
	case errors.Is(err, domain.ErrUnknownStatus):
		return http.StatusBadRequest, CodeInvalidStatus, err.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, CodeValidationFailed, err.Error()
	case errors.Is(err, domain.ErrStorageFormat):
		return http.StatusInternalServerError, CodeStorageFormat, "order file is corrupted"
	case errors.Is(err, domain.ErrStorageWrite):
		return http.StatusInternalServerError, CodeStorageWrite, "failed to save orders"
	case errors.Is(err, domain.ErrStorageRead):
		return http.StatusInternalServerError, CodeStorageRead, "failed to read orders"
	default:
		return http.StatusInternalServerError, CodeInternal, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(body)
}

// writeError отвечает JSON-ошибкой. withSuccess добавляет "success": false
// для изменяющих маршрутов.
func writeError(w http.ResponseWriter, status int, code, message string, withSuccess bool) {
	body := errorBody{Error: message, Code: code}
	if withSuccess {
		success := false
		body.Success = &success
	}
	writeJSON(w, status, body)
}
