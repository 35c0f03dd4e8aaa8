package domain

import "errors"

// ErrClosed is returned when Add, AddRaw or Flush is called after Close.
// Check with errors.Is.
var ErrClosed = errors.New("bulkship: processor closed")
