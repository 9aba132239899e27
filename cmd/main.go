package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

// Main runs the bet application and returns its exit status.
func Main(ctx context.Context, name string) int {
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	Register(commander)

	Complete(name)

	flag.Parse()
	SetupLogging()
	return int(commander.Execute(ctx))
}

// Exit runs Main and exits the process.
func Exit(name string) { os.Exit(Main(context.Background(), name)) }
