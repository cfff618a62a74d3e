package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/cmd"
)

func main() {
	err := cmd.Execute()
	if err == nil {
		return
	}

	var exit *cmd.ExitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			fmt.Fprintln(os.Stderr, "Error:", exit.Err)
		}
		os.Exit(exit.Code)
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
