package export

import "errors"

// ErrRender is returned when a workbook cannot be built or written.
var ErrRender = errors.New("export render failed")
