package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/filebox/ecsfs"
)

func mountForWrite(path string) (*ecsfs.FS, func(), error) {
	var dev ecsfs.FileBlockDevice
	var fsys ecsfs.FS
	fsys.SetLogger(newLogger())
	if err := fsys.Mount(&dev, path); err != nil {
		return nil, nil, err
	}
	return &fsys, func() { fsys.Unmount() }, nil
}

func defineCpInCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cp-in <image> <host-file> <fs-name>",
		Short: "Copy a host file into the image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, done, err := mountForWrite(args[0])
			if err != nil {
				return err
			}
			defer done()

			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if err := fsys.Create(args[2]); err != nil {
				return err
			}
			f, err := fsys.OpenFile(args[2])
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = f.Write(data)
			return err
		},
	}
}

func defineCpOutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cp-out <image> <fs-name> <host-file>",
		Short: "Copy a file out of the image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, done, err := mountForRead(args[0])
			if err != nil {
				return err
			}
			defer done()

			f, err := fsys.OpenFile(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			out, err := os.Create(args[2])
			if err != nil {
				return err
			}
			defer out.Close()
			_, err = io.Copy(out, f)
			return err
		},
	}
}

func defineRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <image> <fs-name>",
		Short: "Delete a file from the image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, done, err := mountForWrite(args[0])
			if err != nil {
				return err
			}
			defer done()
			return fsys.Delete(args[1])
		},
	}
}
