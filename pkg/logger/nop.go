package logger

type nopLogger struct{}

// Nop returns a logger that discards everything. Used in tests and as a safe
// default when no logger is wired.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Trace(...any)          {}
func (nopLogger) Tracef(string, ...any) {}
func (nopLogger) Debug(...any)          {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Info(...any)           {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warn(...any)           {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Error(...any)          {}
func (nopLogger) Errorf(string, ...any) {}
func (nopLogger) Fatal(...any)          {}
func (nopLogger) Fatalf(string, ...any) {}

func (n nopLogger) WithField(string, any) Logger     { return n }
func (n nopLogger) WithFields(map[string]any) Logger { return n }
func (n nopLogger) WithError(error) Logger           { return n }
func (nopLogger) SetLevel(Level)                     {}
func (nopLogger) GetLevel() Level                    { return Disabled }
