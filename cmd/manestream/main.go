package main

import "manestream/internal/cmd"

func main() {
	cmd.Run()
}
