// Root of command-line argument parsing.
// This file was based off the standard cobra template, see
// https://github.com/spf13/cobra
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/serverlessresearch/s3blocks/pkg/blockmgr"
	"github.com/serverlessresearch/s3blocks/pkg/objstore"
	"github.com/spf13/cobra"
)

var cfgFile string

var blockManager *blockmgr.BlockManager

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "s3blocks",
	Short: "Typed access to S3 compatible object storage",
	Long: `Read, write and list objects in a configured S3 or MinIO bucket.
Clients are built once per set of credentials and shared between operations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mgrArgs := map[string]interface{}{}
		if cfgFile != "" {
			mgrArgs["config-file"] = cfgFile
		}

		var err error
		blockManager, err = blockmgr.NewManager(mgrArgs)
		if err != nil {
			return errors.Wrap(err, "Failed to initialize block manager")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if blockManager == nil || blockManager.Logger == nil {
			fmt.Printf("%v\n", err)
		} else {
			blockManager.Logger.WithField("code", objstore.Code(err)).Error(err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is configs/blocks.yaml)")
}
