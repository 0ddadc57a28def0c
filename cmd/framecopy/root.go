package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/backmassage/framecopy/internal/check"
	"github.com/backmassage/framecopy/internal/config"
	"github.com/backmassage/framecopy/internal/logging"
)

func newRootCmd(stdout, stderr io.Writer, getenv func(string) string) *cobra.Command {
	cfg := config.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "framecopy [flags] <source_path> <destination_path>",
		Short: "Copy every frame of a video into a new VP8 video",
		Long: `framecopy decodes the first video stream of source_path and re-encodes
every frame, unchanged and in order, into destination_path with the VP8
codec, keeping the source's frame size and frame rate. Audio, subtitles
and metadata are not copied.

The container follows the destination extension (.webm for WebM).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	flags := config.BindFlags(cmd.Flags(), &cfg)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		// 1. Settle the config: file, environment, shortcuts, positionals.
		if err := flags.Resolve(args, getenv); err != nil {
			return usageError(err)
		}
		if err := cfg.Validate(); err != nil {
			return usageError(err)
		}

		log, err := logging.NewLogger(&cfg, stderr)
		if err != nil {
			return &exitError{code: exitFailure, err: err}
		}
		defer log.Close()

		// 2. --check runs the diagnostics only.
		if cfg.CheckOnly {
			if !check.RunCheck(cmd.Context(), &cfg, log.WithComponent("check")) {
				return &exitError{code: exitFailure}
			}
			return nil
		}

		// 3. Copy.
		return transcode(cmd.Context(), &cfg, log, stdout)
	}
	return cmd
}
