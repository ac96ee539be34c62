package main

import "github.com/prensa-rd/newscrawler/cmd"

func main() {
	cmd.Execute()
}
