package main

import "github.com/nexcrm/outreach-gateway/cmd"

func main() {
	cmd.Execute()
}
