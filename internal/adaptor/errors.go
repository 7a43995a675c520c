package adaptor

import (
	"encoding/json"
	"net/http"

	"reader-hub/pkg/i18n"
	"reader-hub/pkg/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, i18n.FromContext(r.Context()).T("INVALID_BODY"), nil)
		return false
	}
	return true
}

// handleServiceError writes an AppError in the request language. Wrapped
// store errors are logged but never sent to the client.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, operation string) {
	appErr := utils.ToAppError(err)
	loc := i18n.FromContext(r.Context())

	var fields []utils.FieldError
	if len(appErr.Fields) > 0 {
		fields = make([]utils.FieldError, len(appErr.Fields))
		for i, fe := range appErr.Fields {
			fe.Message = loc.T(fe.Key, fe.Param)
			fields[i] = fe
		}
	}

	logFields := []zap.Field{
		zap.String("operation", operation),
		zap.String("kind", string(appErr.Kind)),
		zap.Int("status", appErr.Status),
	}
	if appErr.Err != nil {
		logFields = append(logFields, zap.Error(appErr.Err))
	}
	if appErr.Status >= http.StatusInternalServerError {
		log.Error(operation+" failed", logFields...)
	} else {
		log.Warn(operation+" failed", logFields...)
	}

	var errs any
	if fields != nil {
		errs = fields
	}
	utils.ResponseFail(w, appErr.Status, loc.T(appErr.Key), errs)
}

// localize returns the request translator, used for success messages.
func localize(r *http.Request) *i18n.Localizer {
	return i18n.FromContext(r.Context())
}
