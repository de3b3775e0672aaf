package main

import "commission-fees/cmd"

func main() {
	cmd.Execute()
}
