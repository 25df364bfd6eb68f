package cronutil

import "errors"

// ErrInvalidExpression is wrapped by NextDelay/NextRun/Validate when a cron
// expression fails to parse.
var ErrInvalidExpression = errors.New("invalid cron expression")
