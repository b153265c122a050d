package ui

import (
	"fmt"
	"io"
)

// Console writes styled progress lines. It satisfies the processor's console
// contract so tool and command execution can narrate what it is doing.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		panic("ui.NewConsole: writer is required")
	}
	return &Console{w: w}
}

func (c *Console) Infof(format string, args ...any) {
	fmt.Fprintln(c.w, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Successf(format string, args ...any) {
	fmt.Fprintln(c.w, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Errorf(format string, args ...any) {
	fmt.Fprintln(c.w, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Plainf(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}
