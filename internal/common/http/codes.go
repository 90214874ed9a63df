package http

const (
	CodeUnknown              = "UNKNOWN"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeInvalidJSON          = "INVALID_JSON"
	CodeRequestTooLarge      = "REQUEST_TOO_LARGE"
	CodeMissingAuthorization = "MISSING_AUTHORIZATION"
	CodeNotFound             = "NOT_FOUND"
)
