package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldReferer    = "referer"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldSearch     = "search"
	FieldStatus     = "status"
	FieldCategory   = "category"
	FieldSortField  = "sort_field"
	FieldSortDir    = "sort_direction"
	FieldPage       = "page"
	FieldFilename   = "filename"
	FieldColumns    = "columns"
	FieldRecords    = "records"
	FieldBytes      = "bytes"
	FieldMessageID  = "message_id"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentExport = "export"
	ComponentAMQP   = "amqp"
	ComponentWorker = "worker"
	ComponentCache  = "cache"
)

// OpExport tags export events.
const OpExport = "export"

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithQuery adds the table view state
func (f LogFields) WithQuery(search, status, category, sortField, sortDir string, page int) LogFields {
	f[FieldSearch] = search
	f[FieldStatus] = status
	f[FieldCategory] = category
	f[FieldSortField] = sortField
	f[FieldSortDir] = sortDir
	f[FieldPage] = page
	return f
}

// WithExport adds export outcome fields
func (f LogFields) WithExport(filename string, records, columns, bytes int) LogFields {
	f[FieldFilename] = filename
	f[FieldRecords] = records
	f[FieldColumns] = columns
	f[FieldBytes] = bytes
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

// WithHTTPResponse adds HTTP response fields  
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}