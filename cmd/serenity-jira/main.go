package main

import (
	"github.com/serenity-go/serenity-jira/cmd/serenity-jira/commands"
)

func main() {
	commands.Execute()
}
