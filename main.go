package main

import "github.com/KaramelBytes/soilviz-cli/cmd"

func main() {
	cmd.Execute()
}
