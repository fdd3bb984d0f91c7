package validator

import (
	"errors"
	"fmt"
	"strings"

	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"
	"shopbooking/pkg/slots"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as a field to message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("clock_time", validateClockTime); err != nil {
		log.Fatal("Failed to register 'clock_time' validator",
			"error", err,
		)
	}

	log.Debug("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	return slots.ValidDate(fl.Field().String())
}

func validateClockTime(fl validator.FieldLevel) bool {
	return slots.ValidClock(fl.Field().String())
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateUpdate checks the format of the fields present in update.
func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	var errs ValidationErrors

	if update.Date != nil && !slots.ValidDate(*update.Date) {
		errs = append(errs, ValidationError{Field: "Date", Message: "Date must be a calendar date (YYYY-MM-DD)"})
	}
	if update.Time != nil && !slots.ValidClock(*update.Time) {
		errs = append(errs, ValidationError{Field: "Time", Message: "Time must be a clock time (HH:mm)"})
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		errs = append(errs, ValidationError{Field: "Name", Message: "Name cannot be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "required_without":
			message = "either phone or email is required"
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "e164":
			message = fmt.Sprintf("%s must be a valid phone number (e.g., +15196612111)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "calendar_date":
			message = fmt.Sprintf("%s must be a calendar date (YYYY-MM-DD)", err.Field())
		case "clock_time":
			message = fmt.Sprintf("%s must be a clock time (HH:mm)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
