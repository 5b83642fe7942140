// Handles the "s3blocks bucket" command. This command exists solely to
// contain object-level subcommands (read, write, list).

package cmd

import (
	"github.com/spf13/cobra"
)

// bucketCmd represents the bucket command
var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Object storage interaction",
	Long:  `Commands for dealing with the configured bucket.`,
}

func init() {
	rootCmd.AddCommand(bucketCmd)
}
