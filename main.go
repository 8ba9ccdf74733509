package main

import "github.com/deploymenttheory/go-bamtail/cmd"

func main() {
	cmd.Execute()
}
