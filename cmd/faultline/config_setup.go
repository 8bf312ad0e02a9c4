package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"faultline/internal/config"
)

var (
	fileConfigOnce sync.Once
	fileConfig     *config.File
	fileConfigErr  error
)

// loadFileConfig reads --config, or faultline.toml found upwards from the
// working directory. It returns an empty File when there is none.
func loadFileConfig(cmd *cobra.Command) (*config.File, error) {
	fileConfigOnce.Do(func() {
		path, err := cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			fileConfigErr = fmt.Errorf("failed to get config flag: %w", err)
			return
		}
		if path == "" {
			found, ok, err := config.Find(".")
			if err != nil {
				fileConfigErr = err
				return
			}
			if !ok {
				fileConfig = &config.File{}
				return
			}
			path = found
		}
		fileConfig, fileConfigErr = config.LoadFile(path)
	})
	return fileConfig, fileConfigErr
}
