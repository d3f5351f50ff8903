// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-aggregator/pkg/types"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Describe the fields of a paper record",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), types.FieldDescriptionsMarkdown())
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
