package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// IOLinePrompter collects free-text responses from an io.Reader.
type IOLinePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOLinePrompter constructs a line prompter bound to the supplied reader and writer.
func NewIOLinePrompter(reader io.Reader, writer io.Writer) *IOLinePrompter {
	if reader == nil {
		return &IOLinePrompter{writer: writer}
	}
	return &IOLinePrompter{reader: bufio.NewReader(reader), writer: writer}
}

// ReadLine displays the prompt and returns the trimmed response line.
func (prompter *IOLinePrompter) ReadLine(promptMessage string) (string, error) {
	if prompter == nil || prompter.reader == nil {
		return "", ErrReaderNotConfigured
	}

	if prompter.writer != nil {
		fmt.Fprint(prompter.writer, promptMessage)
	}

	responseLine, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", fmt.Errorf(promptReadFailureTemplateMessage, readError)
	}

	return strings.TrimSpace(responseLine), nil
}
