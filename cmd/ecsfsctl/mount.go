package main

import (
	"github.com/spf13/cobra"

	"github.com/filebox/ecsfs"
	"github.com/filebox/ecsfs/fusebridge"
)

func defineMountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mount <image> <mountpoint>",
		Short: "Mount an ECS150FS image at a host directory via FUSE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dev ecsfs.FileBlockDevice
			var fsys ecsfs.FS
			fsys.SetLogger(newLogger())
			if err := fsys.Mount(&dev, args[0]); err != nil {
				return err
			}
			defer fsys.Unmount()
			return fusebridge.Mount(args[1], &fsys)
		},
	}
}
