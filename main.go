package main

import "github.com/cmmoran/controlapigen/cmd"

func main() {
	cmd.Execute()
}
