package logx

import (
	"io"
	"os"
)

// Stderr returns the configured stderr sink.
func Stderr() io.Writer { return os.Stderr }
