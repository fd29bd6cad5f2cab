package main

import (
	"os"

	"thumbs3/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
