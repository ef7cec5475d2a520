package main

import "github.com/frahmantamala/tandengan-portal/cmd"

func main() {
	cmd.Execute()
}
