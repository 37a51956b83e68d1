package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cubefit/pkg/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the default configuration to a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "cubefit.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.CreateDefaultConfigFile(path); err != nil {
			return err
		}
		fmt.Printf("Default configuration written to: %s\n", path)
		return nil
	},
}
