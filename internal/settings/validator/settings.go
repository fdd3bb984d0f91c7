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

const slotGranularityMinutes = 30

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

func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type SettingsValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSettingsValidator(log *logger.Logger) *SettingsValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock_time", validateClockTime); err != nil {
		log.Fatal("Failed to register 'clock_time' validator", "error", err)
	}
	if err := v.RegisterValidation("slot_duration", validateSlotDuration); err != nil {
		log.Fatal("Failed to register 'slot_duration' validator", "error", err)
	}

	log.Debug("Settings validator initialized successfully")

	return &SettingsValidator{
		validate: v,
		logger:   log,
	}
}

func validateClockTime(fl validator.FieldLevel) bool {
	return slots.ValidClock(fl.Field().String())
}

func validateSlotDuration(fl validator.FieldLevel) bool {
	minutes := fl.Field().Int()
	return minutes > 0 && minutes%slotGranularityMinutes == 0
}

func (v *SettingsValidator) Validate(settings *model.ShopSettings) error {
	if err := v.validate.Struct(settings); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors
	bands := []struct {
		field string
		band  model.DayBand
	}{
		{"Hours.MonFri", settings.Hours.MonFri},
		{"Hours.Sat", settings.Hours.Sat},
		{"Hours.Sun", settings.Hours.Sun},
	}
	for _, b := range bands {
		if b.band.Closed {
			continue
		}
		open, _ := slots.ToMinutes(b.band.Open)
		closing, _ := slots.ToMinutes(b.band.Close)
		if open >= closing {
			errs = append(errs, ValidationError{
				Field:   b.field,
				Message: fmt.Sprintf("open (%s) must be before close (%s)", b.band.Open, b.band.Close),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *SettingsValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		field := strings.TrimPrefix(err.Namespace(), "ShopSettings.")
		message := err.Error()

		switch err.Tag() {
		case "required", "required_unless":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "timezone":
			message = fmt.Sprintf("%s must be an IANA time zone (e.g., America/Toronto)", field)
		case "clock_time":
			message = fmt.Sprintf("%s must be a clock time (HH:mm)", field)
		case "slot_duration":
			message = fmt.Sprintf("%s must be a multiple of %d minutes", field, slotGranularityMinutes)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}
