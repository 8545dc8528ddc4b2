package log

// Canonical field name constants for structured logging.
const (
	FieldComponent = "component"

	// Request fields
	FieldURL     = "url"
	FieldMethod  = "method"
	FieldParams  = "params"
	FieldPayload = "payload"
	FieldHeaders = "headers"
	FieldStatus  = "status"
	FieldBody    = "body"

	// Domain fields
	FieldGUID     = "guid"
	FieldCountry  = "country"
	FieldLanguage = "lang"
	FieldPath     = "path"
	FieldState    = "state"
)
