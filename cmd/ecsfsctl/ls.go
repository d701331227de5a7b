package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func defineLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <image>",
		Short: "List files in an ECS150FS image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, done, err := mountForRead(args[0])
			if err != nil {
				return err
			}
			defer done()
			entries, err := fsys.Ls()
			if err != nil {
				return err
			}
			fmt.Println("FS Ls:")
			for _, e := range entries {
				fmt.Printf("file: %s, size: %d, data_blk: %d\n", e.Name, e.Size, e.FirstBlock)
			}
			return nil
		},
	}
}
