package main

import (
	"Bt1QDL/cmd"
)

func main() {
	cmd.Execute()
}
