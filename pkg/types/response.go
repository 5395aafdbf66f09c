package types

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the single JSON shape every API response uses. Status and
// Success carry the same outcome for clients that read either field.
type Envelope struct {
	Status  string `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func Success(message string, data any) Envelope {
	return Envelope{Status: StatusSuccess, Success: true, Message: message, Data: data}
}

func Failure(code, message string, details any) Envelope {
	return Envelope{Status: StatusError, Success: false, Message: message, Code: code, Details: details}
}
