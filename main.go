package main

import "github.com/zemenay/techpulse-api/cmd"

func main() {
	cmd.Execute()
}
