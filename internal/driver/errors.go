package driver

import "fmt"

// UnknownVariantError reports an Instance whose tag does not classify to a
// usable backend. This is a programming error in session construction, not a
// device failure, and no operation proceeds past it.
type UnknownVariantError struct {
	Kind Kind
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown driver variant: %s", e.Kind)
}

// UnsupportedOperationError reports an operation that the classified backend
// variant does not implement, such as context switching on the remote client.
type UnsupportedOperationError struct {
	Op   string
	Kind Kind
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: not supported by the %s driver", e.Op, e.Kind)
}
