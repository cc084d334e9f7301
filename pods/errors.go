package pods

import "errors"

// Single canonical error for a pod handed the wrong input type.
var ErrBadInput = errors.New("pod: unexpected input type")
