package serrors

import "fmt"

// Base is a coded error carried across service boundaries. Code is stable and
// machine-readable; LocalizationKey addresses a user-facing message catalog.
type Base struct {
	Code            string
	Message         string
	LocalizationKey string
}

func NewError(code, message, localizationKey string) *Base {
	return &Base{
		Code:            code,
		Message:         message,
		LocalizationKey: localizationKey,
	}
}

func (e *Base) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Base) Is(target error) bool {
	other, ok := target.(*Base)
	if !ok {
		return false
	}
	return other.Code == e.Code
}
