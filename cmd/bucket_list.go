// The 's3blocks bucket list' command. This prints every key under a prefix.
package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var listPrefix string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List objects in the bucket",
	Long:  `List prints the key of every object under the given prefix (relative to the bucket's basepath), one per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket, err := blockManager.GetBucket()
		if err != nil {
			return err
		}

		keys, err := bucket.ListPaths(cmd.Context(), listPrefix)
		if err != nil {
			return errors.Wrap(err, "List command failed")
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	},
}

func init() {
	bucketCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listPrefix, "prefix", "p", "", "only list keys under this prefix")
}
