package main

import "github.com/linuxfest/backend/cmd/api/cmd"

func main() {
	cmd.Execute()
}
