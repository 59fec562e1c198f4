package main

import "github.com/KostasZigo/rgit/cmd"

func main() {
	cmd.Execute()
}
