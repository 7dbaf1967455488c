package main

import (
	"context"
	"os"

	"LichessIngest/cmd/lichessingest/commands"
)

func main() {
	os.Exit(commands.Execute(context.Background(), os.Args[1:]))
}
