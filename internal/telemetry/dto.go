package telemetry

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/caec/caec-backend/pkg/errors"
)

const (
	MetricOptimal = "optimal"
	MetricWarning = "warning"

	SourceStatic = "static"
	SourceSensor = "sensor"
)

// SystemData is the dashboard reading for a user's active system.
type SystemData struct {
	WaterLevel       float64           `json:"waterLevel"`
	PhLevel          float64           `json:"phLevel"`
	WaterTemp        float64           `json:"waterTemp"`
	NutrientLevel    float64           `json:"nutrientLevel"`
	IrrigationActive bool              `json:"irrigationActive"`
	LightActive      bool              `json:"lightActive"`
	Timestamp        time.Time         `json:"timestamp"`
	SystemCode       string            `json:"systemCode,omitempty"`
	SystemName       string            `json:"systemName,omitempty"`
	Source           string            `json:"source"`
	Status           map[string]string `json:"status"`
}

// IrrigationCommand is the dashboard toggle; it is acknowledged, never dispatched.
type IrrigationCommand struct {
	Status    bool       `json:"status"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type UpdateSystemRequest struct {
	Irrigation IrrigationCommand `json:"irrigation"`
}

type UpdateSystemResult struct {
	Irrigation IrrigationCommand `json:"irrigation"`
	ReceivedAt time.Time         `json:"received_at"`
}

// IrrigationSettings are the per-user irrigation cycle parameters.
type IrrigationSettings struct {
	SavingPower      int `json:"savingPower" validate:"min=0,max=100"`
	SavingDuration   int `json:"savingDuration" validate:"min=1,max=120"`
	AbundantDuration int `json:"abundantDuration" validate:"min=1,max=60"`
}

type IrrigationConfigRequest struct {
	Config    IrrigationSettings `json:"config" validate:"required"`
	Timestamp *time.Time         `json:"timestamp,omitempty"`
}

// IrrigationConfigResult echoes the stored settings.
type IrrigationConfigResult struct {
	Config    IrrigationSettings `json:"config"`
	IsDefault bool               `json:"is_default"`
	UpdatedAt *time.Time         `json:"updated_at,omitempty"`
}

// DefaultIrrigation applies until a user saves their own settings.
func DefaultIrrigation() IrrigationSettings {
	return IrrigationSettings{SavingPower: 40, SavingDuration: 15, AbundantDuration: 5}
}

var settingsValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

// Validate checks the validate tags on every field. Details map the json
// field name to the violated bound.
func (s IrrigationSettings) Validate() error {
	err := settingsValidator.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid irrigation config")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "min":
			details[fe.Field()] = "must be at least " + fe.Param()
		case "max":
			details[fe.Field()] = "must be at most " + fe.Param()
		default:
			details[fe.Field()] = "is invalid"
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid irrigation config").WithDetails(details)
}
