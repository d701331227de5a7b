package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filebox/ecsfs"
)

func mountForRead(path string) (*ecsfs.FS, func(), error) {
	var dev ecsfs.FileBlockDevice
	var fsys ecsfs.FS
	fsys.SetLogger(newLogger())
	if err := fsys.Mount(&dev, path); err != nil {
		return nil, nil, err
	}
	return &fsys, func() { fsys.Unmount() }, nil
}

func defineInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <image>",
		Short: "Print superblock and free-space summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, done, err := mountForRead(args[0])
			if err != nil {
				return err
			}
			defer done()
			info, err := fsys.Info()
			if err != nil {
				return err
			}
			fmt.Print(info)
			return nil
		},
	}
}
