package main

import "github.com/user/cloudcomply/cmd"

func main() {
	cmd.Execute()
}
