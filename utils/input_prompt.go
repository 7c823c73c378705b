package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/meysamhadeli/traitgen/constants/lipgloss"
)

// ConfirmPrompt asks a yes/no question; anything but y/yes counts as no
func ConfirmPrompt(question string, reader *bufio.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, lipgloss.BlueSky.Render(fmt.Sprintf("%s (y/N): ", question)))

	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("error reading input: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
