package config

// SetPath sets the shift config file path for testing
func (s *Shift) SetPath(path string) {
	s.path = path
}

// SetLevel sets the log level for testing
func (l *Logger) SetLevel(level string) {
	l.level = level
}

// SetFormat sets the log format for testing
func (l *Logger) SetFormat(format string) {
	l.format = format
}

// SetOutput sets the log output for testing
func (l *Logger) SetOutput(output string) {
	l.output = output
}
