package logger

import "sync"

// named holds loggers registered per component.
var named sync.Map // string -> *Logger

// Register makes l the logger Get returns for name. Embedding applications
// use it to send one component's output elsewhere.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered for name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return WithComponent(name)
}
