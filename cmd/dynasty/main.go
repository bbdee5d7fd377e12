package main

import (
	"fmt"
	"os"

	"github.com/teranos/dynasty/cmd/dynasty/commands"
	"github.com/teranos/dynasty/errors"
	"github.com/teranos/dynasty/logger"
)

func main() {
	err := commands.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
