package executor

import (
	"bytes"
	"fmt"
)

// collector captures a stream up to maxChars while counting the true size,
// so the truncation marker can report how much output there really was.
type collector struct {
	buffer     bytes.Buffer
	maxChars   int
	totalBytes int
	markerFmt  string
}

func newCollector(maxChars int, markerFmt string) *collector {
	return &collector{maxChars: maxChars, markerFmt: markerFmt}
}

func (c *collector) Write(p []byte) (int, error) {
	c.totalBytes += len(p)

	remaining := c.maxChars - c.buffer.Len()
	if remaining <= 0 {
		return len(p), nil
	}

	toWrite := p
	if len(toWrite) > remaining {
		toWrite = toWrite[:remaining]
	}
	if _, err := c.buffer.Write(toWrite); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *collector) String() string {
	if c.totalBytes > c.maxChars {
		return c.buffer.String() + fmt.Sprintf(c.markerFmt, c.totalBytes)
	}
	return c.buffer.String()
}
