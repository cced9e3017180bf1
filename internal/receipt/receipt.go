// Package receipt adapts a binary object store for uploaded receipts,
// keyed "{userID}/{transactionID}". Receipt contents are opaque; the
// ledger never interprets them.
package receipt

import "errors"

// ErrNotFound indicates no receipt is stored under the key.
var ErrNotFound = errors.New("receipt not found")
