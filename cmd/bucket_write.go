// Handles the "s3blocks bucket write" command

package cmd

import (
	"io/ioutil"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var writeCmdConfig struct {
	path   string
	source string
}

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write an object to the bucket",
	Long: `Write uploads a local file (or stdin if --source is not given) to the given
path, replacing any existing object. The resulting key is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket, err := blockManager.GetBucket()
		if err != nil {
			return err
		}

		var content []byte
		if writeCmdConfig.source == "" {
			content, err = ioutil.ReadAll(os.Stdin)
		} else {
			var source string
			source, err = homedir.Expand(writeCmdConfig.source)
			if err == nil {
				content, err = ioutil.ReadFile(source)
			}
		}
		if err != nil {
			return errors.Wrap(err, "Failed to read source")
		}

		key, err := bucket.WritePath(cmd.Context(), writeCmdConfig.path, content)
		if err != nil {
			return errors.Wrap(err, "Write command failed")
		}
		blockManager.Logger.Info("Successfully wrote object: " + key)
		return nil
	},
}

func init() {
	bucketCmd.AddCommand(writeCmd)

	writeCmd.Flags().StringVarP(&writeCmdConfig.path, "path", "p", "", "path to write the object to")
	writeCmd.Flags().StringVarP(&writeCmdConfig.source, "source", "s", "", "local file to upload (defaults to stdin)")
	writeCmd.MarkFlagRequired("path")
}
