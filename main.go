package main

import "github.com/theirongolddev/mfocus/cmd"

func main() {
	cmd.Execute()
}
