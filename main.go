package main

import "github.com/frahmantamala/projecthub/cmd"

func main() {
	cmd.Execute()
}
