package main

import (
	"os"

	"github.com/sandeepkv93/todosync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
