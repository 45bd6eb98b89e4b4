// Command reportctl drives the report template forms from a terminal.
package main

import (
	"errors"
	"fmt"
	"os"

	"reports-ui/internal/ui"
)

func main() {
	root := newRootCmd(newApp(os.Stdout, ui.SurveyPrompter()))

	if err := root.Execute(); err != nil {
		if !errors.Is(err, ui.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
