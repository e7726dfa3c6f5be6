package main

import "github.com/FooBarQuaxx/knowledge-repo/cli"

func main() {
	cli.Execute()
}
