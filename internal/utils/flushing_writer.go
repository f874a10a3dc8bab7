package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

type flushingWriter struct {
	destination io.Writer
	writeGuard  sync.Mutex
}

// NewFlushingWriter wraps destination so every write is flushed immediately
// when the destination supports flushing. Interactive prompts depend on this:
// a buffered prompt line must reach the terminal before input is read.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if _, alreadyFlushing := destination.(*flushingWriter); alreadyFlushing {
		return destination
	}
	return &flushingWriter{destination: destination}
}

func (writer *flushingWriter) Write(data []byte) (int, error) {
	writer.writeGuard.Lock()
	defer writer.writeGuard.Unlock()

	writtenBytes, writeError := writer.destination.Write(data)
	if writeError != nil {
		return writtenBytes, writeError
	}

	if flushableDestination, canFlush := writer.destination.(flusher); canFlush {
		writeError = flushableDestination.Flush()
	}

	return writtenBytes, writeError
}
