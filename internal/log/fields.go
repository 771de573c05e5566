package log

import "github.com/shopspring/decimal"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldExpenseID   = "expense_id"
	FieldExpenseDesc = "expense_description"
	FieldAmount      = "amount"
	FieldTotal       = "total"
	FieldBudget      = "budget"
	FieldAffected    = "affected"
	FieldEventType   = "event_type"
	FieldEventID     = "event_id"
	FieldBackend     = "backend"
	FieldTransport   = "transport"
	FieldUsername    = "username"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentConsole = "console"
	ComponentTracker = "tracker"
	ComponentStorage = "storage"
	ComponentEvents  = "events"
	ComponentAMQP    = "amqp"
	ComponentKafka   = "kafka"
	ComponentSheets  = "sheets"
	ComponentWorker  = "worker"
	ComponentAuth    = "auth"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpBudget   = "budget"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpExport   = "export"
	OpLoad     = "load"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeBudget        = "budget_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(errType string) LogFields {
	f[FieldErrorType] = errType
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(id, desc string, amount decimal.Decimal) LogFields {
	if id != "" {
		f[FieldExpenseID] = id
	}
	f[FieldExpenseDesc] = desc
	f[FieldAmount] = amount.String()
	return f
}

// WithBudget adds total and limit fields
func (f LogFields) WithBudget(total, budget decimal.Decimal) LogFields {
	f[FieldTotal] = total.String()
	f[FieldBudget] = budget.String()
	return f
}

func (f LogFields) WithAffected(n int) LogFields {
	f[FieldAffected] = n
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
