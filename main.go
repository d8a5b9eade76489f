package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/pulse/cmd"
)

func main() {
	if err := cmd.PulseCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
