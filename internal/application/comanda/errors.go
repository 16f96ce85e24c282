package comanda

import (
	"errors"
	"fmt"

	"github.com/comanda/backend/internal/domain/shared"
)

// Lookup errors raised against the mirror before any remote call
var (
	ErrTabNotFound      = shared.NewDomainError("TAB_NOT_FOUND", "Tab not found")
	ErrProductNotFound  = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrProductNotOnSale = shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available for sale")
)

// RemoteFailure reports that the storage collaborator rejected a call or could not be reached.
// The mirror is left as it was before the operation, or reconciled from storage.
type RemoteFailure struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the collaborator error
func (e *RemoteFailure) Unwrap() error {
	return e.Err
}

// IsRemoteFailure reports whether err came from the storage collaborator
func IsRemoteFailure(err error) bool {
	var rf *RemoteFailure
	return errors.As(err, &rf)
}
