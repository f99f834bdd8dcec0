package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/catalog"
)

// ErrDuplicateColumn indicates an endpoint reported the same column name
// twice for one table.
var ErrDuplicateColumn = errors.New("duplicate column name")

// Action defines the recommended action after an error
type Action int

const (
	// ActionContinue indicates the run should continue despite the error
	ActionContinue Action = iota
	// ActionSkipPair indicates the current table pair should be skipped
	ActionSkipPair
	// ActionAbort indicates the entire run should be aborted
	ActionAbort
)

// ErrorCategory defines categories of errors during reconciliation
type ErrorCategory int

const (
	// Error categories with increasing severity
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryWarning
	ErrorCategoryDuplicateColumn
	ErrorCategoryMalformedAttribute
	ErrorCategoryPairLevel
	ErrorCategoryMetadataUnavailable
	ErrorCategoryConnection
	ErrorCategoryCritical
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryWarning:
		return "Warning"
	case ErrorCategoryDuplicateColumn:
		return "DuplicateColumn"
	case ErrorCategoryMalformedAttribute:
		return "MalformedAttribute"
	case ErrorCategoryPairLevel:
		return "PairLevel"
	case ErrorCategoryMetadataUnavailable:
		return "MetadataUnavailable"
	case ErrorCategoryConnection:
		return "Connection"
	case ErrorCategoryCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// ErrorRecord represents a single error during reconciliation
type ErrorRecord struct {
	Category       ErrorCategory
	Endpoint       string // "source" or "target"
	TableName      string
	ColumnName     string
	AttributeValue interface{}
	Error          error
	Message        string // Derived from Error but stored for serialization
	Timestamp      time.Time
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		Error:     err,
		Timestamp: time.Now(),
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithEndpoint adds the endpoint side to the error record
func (r ErrorRecord) WithEndpoint(endpoint string) ErrorRecord {
	r.Endpoint = endpoint
	return r
}

// WithTable adds table information to the error record
func (r ErrorRecord) WithTable(table string) ErrorRecord {
	r.TableName = table
	return r
}

// WithColumn adds column information to the error record
func (r ErrorRecord) WithColumn(columnName string, attributeValue interface{}) ErrorRecord {
	r.ColumnName = columnName
	r.AttributeValue = attributeValue
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.Endpoint != "" {
		sb.WriteString(fmt.Sprintf("Endpoint: %s ", r.Endpoint))
	}

	if r.TableName != "" {
		sb.WriteString(fmt.Sprintf("Table: %s ", r.TableName))
	}

	if r.ColumnName != "" {
		sb.WriteString(fmt.Sprintf("Column: %s ", r.ColumnName))
		if r.AttributeValue != nil {
			sb.WriteString(fmt.Sprintf("Value: %v ", r.AttributeValue))
		}
	}

	if r.Error != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Error.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}

	return sb.String()
}

// ErrorHandler manages error handling during a reconciliation run
type ErrorHandler struct {
	logger          *zap.Logger
	failFast        bool
	errorThresholds map[ErrorCategory]int
	errorCounts     map[ErrorCategory]int
	sampleErrors    map[ErrorCategory][]ErrorRecord
	tableErrors     map[string]int
	mu              sync.Mutex
	maxSamples      int
}

// NewErrorHandler creates a new error handler. With failFast set, any
// error above warning severity aborts the run.
func NewErrorHandler(logger *zap.Logger, failFast bool) *ErrorHandler {
	// Default error thresholds by category
	defaultThresholds := map[ErrorCategory]int{
		ErrorCategoryWarning:             1000, // Many warnings are acceptable
		ErrorCategoryDuplicateColumn:     100,  // Duplicates skip their pair
		ErrorCategoryMalformedAttribute:  100,  // Malformed values skip their pair
		ErrorCategoryPairLevel:           50,   // Fewer pair-level errors acceptable
		ErrorCategoryMetadataUnavailable: 20,   // Listing failures suggest a wider problem
		ErrorCategoryConnection:          3,    // Very few connection errors acceptable
		ErrorCategoryCritical:            0,    // No critical errors acceptable
	}

	thresholds := make(map[ErrorCategory]int)
	for category, threshold := range defaultThresholds {
		thresholds[category] = threshold
	}

	return &ErrorHandler{
		logger:          logger,
		failFast:        failFast,
		errorThresholds: thresholds,
		errorCounts:     make(map[ErrorCategory]int),
		sampleErrors:    make(map[ErrorCategory][]ErrorRecord),
		tableErrors:     make(map[string]int),
		maxSamples:      5, // Store up to 5 sample errors per category
	}
}

// CategorizeError determines the category of an error
func (eh *ErrorHandler) CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	var category ErrorCategory

	switch {
	case errors.Is(err, ErrDuplicateColumn):
		category = ErrorCategoryDuplicateColumn

	case errors.Is(err, catalog.ErrMalformedAttribute):
		category = ErrorCategoryMalformedAttribute

	case errors.Is(err, catalog.ErrMetadataUnavailable):
		category = ErrorCategoryMetadataUnavailable

	// Connection errors
	case strings.Contains(err.Error(), "connection") ||
		strings.Contains(err.Error(), "timeout") ||
		strings.Contains(err.Error(), "EOF"):
		category = ErrorCategoryConnection

	// Critical errors
	case strings.Contains(err.Error(), "fatal") ||
		strings.Contains(err.Error(), "panic"):
		category = ErrorCategoryCritical

	// Default to pair-level if we can't categorize more specifically
	default:
		category = ErrorCategoryPairLevel
	}

	if eh.logger != nil {
		eh.logger.Debug("Categorized error",
			zap.String("error", err.Error()),
			zap.String("category", category.String()))
	}

	return category
}

// HandleError processes an error and determines the action to take
func (eh *ErrorHandler) HandleError(record ErrorRecord) Action {
	eh.RecordError(record)

	if eh.failFast && record.Category > ErrorCategoryWarning {
		if eh.logger != nil {
			eh.logger.Error("Aborting run on first error",
				zap.String("category", record.Category.String()),
				zap.String("error", record.Message))
		}
		return ActionAbort
	}

	switch record.Category {
	case ErrorCategoryNone, ErrorCategoryWarning:
		return ActionContinue

	case ErrorCategoryDuplicateColumn,
		ErrorCategoryMalformedAttribute,
		ErrorCategoryPairLevel,
		ErrorCategoryMetadataUnavailable,
		ErrorCategoryConnection:
		return ActionSkipPair

	case ErrorCategoryCritical:
		if eh.logger != nil {
			eh.logger.Error("Critical error during reconciliation",
				zap.String("category", record.Category.String()),
				zap.String("error", record.Message))
		}
		return ActionAbort

	default:
		return ActionContinue
	}
}

// ShouldAbort reports whether accumulated errors warrant aborting the run
func (eh *ErrorHandler) ShouldAbort() bool {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	if eh.errorCounts[ErrorCategoryCritical] > 0 {
		return true
	}

	if eh.failFast {
		for category, count := range eh.errorCounts {
			if category > ErrorCategoryWarning && count > 0 {
				return true
			}
		}
	}

	for category, count := range eh.errorCounts {
		threshold, exists := eh.errorThresholds[category]
		if exists && count > threshold {
			if eh.logger != nil {
				eh.logger.Error("Error threshold exceeded",
					zap.String("category", category.String()),
					zap.Int("errorCount", count),
					zap.Int("threshold", threshold))
			}
			return true
		}
	}

	return false
}

// RecordError saves an error occurrence
func (eh *ErrorHandler) RecordError(record ErrorRecord) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	// Increment the category counter
	eh.errorCounts[record.Category]++

	// Save sample errors (up to max samples per category)
	samples := eh.sampleErrors[record.Category]
	if len(samples) < eh.maxSamples {
		eh.sampleErrors[record.Category] = append(samples, record)
	}

	// Track errors by table
	if record.TableName != "" {
		eh.tableErrors[record.TableName]++
	}

	// Log the error
	if eh.logger != nil {
		logLevel := zap.InfoLevel

		// Use appropriate log level based on error category
		switch record.Category {
		case ErrorCategoryWarning, ErrorCategoryDuplicateColumn:
			logLevel = zap.WarnLevel
		case ErrorCategoryConnection, ErrorCategoryMetadataUnavailable:
			logLevel = zap.WarnLevel
		case ErrorCategoryCritical:
			logLevel = zap.ErrorLevel
		default:
			logLevel = zap.InfoLevel
		}

		eh.logger.Log(logLevel, "Reconciliation error",
			zap.String("category", record.Category.String()),
			zap.String("endpoint", record.Endpoint),
			zap.String("table", record.TableName),
			zap.String("column", record.ColumnName),
			zap.String("error", record.Message))
	}
}

// GetErrorSummary generates an error summary report
func (eh *ErrorHandler) GetErrorSummary() map[ErrorCategory]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	// Create a copy of the current error counts
	summary := make(map[ErrorCategory]int)
	for category, count := range eh.errorCounts {
		summary[category] = count
	}

	return summary
}

// GetErrorSamples returns sample errors for each category
func (eh *ErrorHandler) GetErrorSamples() map[ErrorCategory][]ErrorRecord {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	// Create a deep copy of samples to avoid concurrent modification
	samples := make(map[ErrorCategory][]ErrorRecord)
	for category, records := range eh.sampleErrors {
		categorySamples := make([]ErrorRecord, len(records))
		copy(categorySamples, records)
		samples[category] = categorySamples
	}

	return samples
}

// GetTableErrorCounts returns error counts by table
func (eh *ErrorHandler) GetTableErrorCounts() map[string]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	// Create a copy of the table error counts
	tableCounts := make(map[string]int)
	for table, count := range eh.tableErrors {
		tableCounts[table] = count
	}

	return tableCounts
}

// WrapError creates a new error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsRetryableError checks if an error is worth retrying based on its message
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errorMsg := err.Error()
	return strings.Contains(errorMsg, "connection") ||
		strings.Contains(errorMsg, "timeout") ||
		strings.Contains(errorMsg, "temporary") ||
		strings.Contains(errorMsg, "deadline") ||
		strings.Contains(errorMsg, "try again")
}
