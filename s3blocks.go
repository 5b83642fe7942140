package main

import "github.com/serverlessresearch/s3blocks/cmd"

// The s3blocks command line tool is a single executable with subcommands, as
// is common for many cloud utilities. All of the work happens in cmd.
func main() {
	cmd.Execute()
}
