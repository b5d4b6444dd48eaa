package smote

import "fmt"

var (
	ErrConfiguration = fmt.Errorf("invalid oversampling configuration")
	// ErrProtectionExhausted is returned when no synthetic example passed the
	// protection filter within the configured number of retries.
	ErrProtectionExhausted = fmt.Errorf("synthetic example protection exhausted")
	ErrNotFitted           = fmt.Errorf("classifier is not fitted")
)
