package grayscott

import "errors"

// ErrSizeMismatch indicates field data whose length differs from the grid size.
var ErrSizeMismatch = errors.New("grayscott: field length does not match grid size")
