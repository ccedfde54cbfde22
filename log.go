// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Logger returns the package logger used by nets. It is a no-op logger unless
// SetLogger has been called.
//
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger sets the package logger. A nil logger restores the no-op logger.
// SetLogger is safe for concurrent use; circuits created before the call keep
// the logger they were given.
//
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
