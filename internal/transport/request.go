package transport

import (
	"net/http"

	"quikmart/internal/domain"
	applog "quikmart/internal/logger"
	"quikmart/internal/middleware"
	"quikmart/internal/service"

	"go.uber.org/zap"
)

// MessageResponse is the body of endpoints that only report an outcome
type MessageResponse struct {
	Message string `json:"message"`
}

// handlerBase carries what every handler needs to answer a request
type handlerBase struct {
	logger *zap.Logger
	debug  bool
}

func (h handlerBase) log(r *http.Request) *zap.Logger {
	return applog.FromContext(r.Context(), h.logger)
}

// decode reads the JSON body into v and answers 400 itself when that fails
func (h handlerBase) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.log(r).Debug("Request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h handlerBase) fail(w http.ResponseWriter, r *http.Request, err error) {
	middleware.RespondWithServiceError(w, h.log(r), err, h.debug)
}

// caller returns the authenticated identity, answering 401 when there is none
func (h handlerBase) caller(w http.ResponseWriter, r *http.Request) (domain.RequestContext, bool) {
	rc, ok := middleware.GetRequestContext(r.Context())
	if !ok {
		h.log(r).Error("Request context missing behind auth middleware")
		middleware.RespondWithError(w, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
	}
	return rc, ok
}
