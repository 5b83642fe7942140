// Handles the "s3blocks bucket read" command

package cmd

import (
	"io/ioutil"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var readCmdConfig struct {
	path   string
	output string
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read an object from the bucket",
	Long: `Read fetches the object at the given path (relative to the bucket's basepath)
and writes it to stdout, or to a local file if --output is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket, err := blockManager.GetBucket()
		if err != nil {
			return err
		}

		data, err := bucket.ReadPath(cmd.Context(), readCmdConfig.path)
		if err != nil {
			return errors.Wrap(err, "Read command failed")
		}

		if readCmdConfig.output == "" {
			_, err = os.Stdout.Write(data)
			return err
		}

		output, err := homedir.Expand(readCmdConfig.output)
		if err != nil {
			return errors.Wrap(err, "Invalid output path")
		}
		if err := ioutil.WriteFile(output, data, 0644); err != nil {
			return errors.Wrap(err, "Failed to write output file")
		}
		blockManager.Logger.Infof("Read %d bytes into %s", len(data), output)
		return nil
	},
}

func init() {
	bucketCmd.AddCommand(readCmd)

	readCmd.Flags().StringVarP(&readCmdConfig.path, "path", "p", "", "path of the object to read")
	readCmd.Flags().StringVarP(&readCmdConfig.output, "output", "o", "", "local file to write to (defaults to stdout)")
	readCmd.MarkFlagRequired("path")
}
