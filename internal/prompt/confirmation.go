package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/relpick/internal/shared"
)

const (
	confirmationSuffixConstant       = " [y/N]: "
	affirmativeShortAnswerConstant   = "y"
	affirmativeLongAnswerConstant    = "yes"
	readerNotConfiguredMessage       = "prompt reader not configured"
	promptReadFailureTemplateMessage = "unable to read prompt response: %w"
)

// ErrReaderNotConfigured indicates the prompter was constructed without an input reader.
var ErrReaderNotConfigured = errors.New(readerNotConfiguredMessage)

// IOConfirmationPrompter collects yes/no confirmations from an io.Reader.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOConfirmationPrompter constructs a prompter bound to the supplied reader and writer.
func NewIOConfirmationPrompter(reader io.Reader, writer io.Writer) *IOConfirmationPrompter {
	if reader == nil {
		return &IOConfirmationPrompter{writer: writer}
	}
	return &IOConfirmationPrompter{reader: bufio.NewReader(reader), writer: writer}
}

// Confirm displays the prompt and interprets the response, defaulting to "no".
func (prompter *IOConfirmationPrompter) Confirm(promptMessage string) (shared.ConfirmationResult, error) {
	if prompter == nil || prompter.reader == nil {
		return shared.ConfirmationResult{}, ErrReaderNotConfigured
	}

	if prompter.writer != nil {
		fmt.Fprint(prompter.writer, promptMessage+confirmationSuffixConstant)
	}

	responseLine, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return shared.ConfirmationResult{}, fmt.Errorf(promptReadFailureTemplateMessage, readError)
	}

	normalizedResponse := strings.ToLower(strings.TrimSpace(responseLine))
	confirmed := normalizedResponse == affirmativeShortAnswerConstant || normalizedResponse == affirmativeLongAnswerConstant
	return shared.ConfirmationResult{Confirmed: confirmed}, nil
}
