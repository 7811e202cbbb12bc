package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	apperrors "parkeasy/internal/errors"
	"parkeasy/internal/utils"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("spot_feature", func(fl validator.FieldLevel) bool {
		_, unknown := utils.UnknownFeature([]string{fl.Field().String()})
		return !unknown
	})
	v.RegisterValidation("spot_vehicle_type", func(fl validator.FieldLevel) bool {
		return utils.IsSpotVehicleType(fl.Field().String())
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondError maps err to a status code. Client errors carry their message;
// anything else is logged and reported as a server error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
		writeJSON(w, httpErr.Code, ErrorResponse{Message: httpErr.Message, Errors: httpErr.Fields})
		return
	}

	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "request_id", requestID(r), "error", err)

	if httpErr != nil {
		writeJSON(w, httpErr.Code, ErrorResponse{Message: httpErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "Server error", Error: err.Error()})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.BadRequest("Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make([]apperrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperrors.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return apperrors.Validation(fields...)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", f)
	case "email":
		return fmt.Sprintf("%s must be a valid email", f)
	case "e164":
		return fmt.Sprintf("%s must be a phone number in international format", f)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", f, fe.Param())
	case "spot_feature":
		return fmt.Sprintf("%s is not a known feature", f)
	case "spot_vehicle_type":
		return fmt.Sprintf("%s must be one of %s", f, strings.Join(utils.SpotVehicleTypes, ", "))
	}
	return fmt.Sprintf("%s is invalid", f)
}
