package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/filebox/ecsfs"
)

func defineMkfsCommand() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "mkfs <image> <data-blocks>",
		Short: "Create a new ECS150FS image on disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataBlocks, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			return runMkfs(args[0], dataBlocks, label)
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "volume label (currently unused on disk)")
	return cmd
}

func runMkfs(path string, dataBlocks int, label string) error {
	fatBlockCount := (dataBlocks*2 + ecsfs.BlockSize - 1) / ecsfs.BlockSize
	totalBlocks := fatBlockCount + 2 + dataBlocks

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Truncate(int64(totalBlocks) * ecsfs.BlockSize); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	var dev ecsfs.FileBlockDevice
	var fm ecsfs.Formatter
	return fm.Format(&dev, path, dataBlocks, label)
}
