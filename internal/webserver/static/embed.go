package static

import _ "embed"

// Index is the browser interface.
//
//go:embed index.html
var Index []byte
