package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldReceiptID  = "receipt_id"
	FieldVendor     = "vendor"
	FieldTotal      = "total"
	FieldImagePath  = "image_path"
	FieldCategory   = "category"
	FieldImported   = "imported"
	FieldSource     = "source"
	FieldBytes      = "bytes"
	FieldErrorType  = "error_type"
)

// Component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentReceipts = "receipts"
	ComponentBudgets  = "budgets"
	ComponentStorage  = "storage"
	ComponentOCR      = "ocr"
	ComponentAMQP     = "amqp"
	ComponentSheets   = "sheets"
)

// Operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpList     = "list"
	OpUpsert   = "upsert"
	OpImport   = "import"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Error type categories
const (
	ErrorTypeValidation  = "validation_error"
	ErrorTypeNotFound    = "not_found_error"
	ErrorTypeUnavailable = "unavailable_error"
	ErrorTypeDatabase    = "database_error"
	ErrorTypeInternal    = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError records err's message; a nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithReceipt adds the fields identifying a stored receipt.
func (f LogFields) WithReceipt(id int64, vendor string, total float64) LogFields {
	f[FieldReceiptID] = id
	f[FieldVendor] = vendor
	f[FieldTotal] = total
	return f
}

// WithImport adds the outcome of a budget import.
func (f LogFields) WithImport(source string, imported int) LogFields {
	f[FieldSource] = source
	f[FieldImported] = imported
	return f
}

func (f LogFields) WithHTTPRequest(method, path, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice flattens the fields into slog key/value arguments.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
