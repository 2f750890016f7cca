package main

import "github.com/vibast-solutions/ms-go-wellness/cmd"

func main() {
	cmd.Execute()
}
