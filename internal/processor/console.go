package processor

// Console receives human-facing progress lines while a response is being
// processed. The UI layer supplies a styled implementation.
type Console interface {
	Infof(format string, args ...any)
	Successf(format string, args ...any)
	Errorf(format string, args ...any)
	Plainf(format string, args ...any)
}

// NopConsole discards all output.
type NopConsole struct{}

func (NopConsole) Infof(string, ...any)    {}
func (NopConsole) Successf(string, ...any) {}
func (NopConsole) Errorf(string, ...any)   {}
func (NopConsole) Plainf(string, ...any)   {}
