package repository

import "errors"

// ErrProductNotFound is returned when a product id does not resolve to a row.
var ErrProductNotFound = errors.New("product not found")
