package main

import "github.com/KaramelBytes/shoptrends-cli/cmd"

func main() {
	cmd.Execute()
}
