// file: internal/transport/errors.go
package transport

import (
	"fmt"

	"github.com/mcpcore/mcpcore/internal/mcperr"
)

// newSizeError reports a line that exceeded MaxMessageSize.
func newSizeError(size int) error {
	return mcperr.New(mcperr.ParseError, fmt.Sprintf("message size %d exceeds maximum of %d bytes", size, MaxMessageSize))
}

// newClosedError reports an operation attempted on a closed transport.
func newClosedError(operation string) error {
	return mcperr.New(mcperr.InternalError, fmt.Sprintf("cannot %s on a closed transport", operation))
}
