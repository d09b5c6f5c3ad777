package domain

import "errors"

// InvalidInputError reports a caller-supplied value the engine refuses
// to operate on (non-positive amount, zero entry price, unknown side).
// These are contract violations, not market conditions.
type InvalidInputError struct {
	Field string
	Value string
}

func (e *InvalidInputError) Error() string {
	return "invalid input [" + e.Field + "]: " + e.Value
}

// IsInvalidInput checks whether err is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

var (
	// ErrSymbolNotFound is returned when a symbol is not in the
	// simulated market. Expected, recoverable condition.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrOrderNotFound is returned when an order id does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInsufficientBalance is returned when placing an order that
	// the account cannot cover.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrEngineClosed is returned on mutating operations against a
	// torn-down engine. Programmer error; queries stay valid against
	// the frozen state.
	ErrEngineClosed = errors.New("engine closed")

	// ErrConfigNotFound is returned when the configuration file is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)
