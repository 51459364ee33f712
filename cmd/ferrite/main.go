package main

import "github.com/mvp-joe/ferrite/internal/cli"

func main() {
	cli.Execute()
}
