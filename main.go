package main

import "github.com/oceandata/hydromon/cmd"

func main() {
	cmd.Execute()
}
