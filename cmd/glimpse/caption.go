// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glimpse-dev/glimpse/internal/caption"
	"github.com/glimpse-dev/glimpse/internal/index"
)

func newCaptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caption",
		Short: "Caption every image in the image directory",
		Long: `Send each .jpg, .jpeg and .png file in data.image_dir to the configured
vision-language model and write the captions to data.captions_file.

An image whose captioning fails is recorded with an empty caption and
skipped by 'glimpse index'. When captioner.image_embedding is enabled the
images are also embedded into a separate image index.`,
		Args: cobra.NoArgs,
		RunE: runCaption,
	}

	cmd.Flags().String("dir", "", "override the image directory")
	_ = viper.BindPFlag("data.image_dir", cmd.Flags().Lookup("dir"))

	return cmd
}

func runCaption(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := newCaptioner(cfg)
	if err != nil {
		return err
	}
	ie, err := newImageEmbedder(cfg)
	if err != nil {
		return err
	}

	res, err := caption.Run(ctx, cfg.Data.ImageDir, c, ie)
	if err != nil {
		return err
	}

	if err := caption.SaveCaptions(cfg.Data.CaptionsFile, res.Captions); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Captioned %d image(s) into %s (%d failed, %d unreadable)\n",
		len(res.Captions), cfg.Data.CaptionsFile, res.Failed, res.Unreadable)

	if ie == nil {
		return nil
	}
	if len(res.ImageVectors) == 0 {
		_, _ = fmt.Fprintln(out, "No image could be embedded; image index not written")
		return nil
	}

	icfg := imageIndexConfig(cfg)
	if _, err := index.Build(ctx, icfg, res.ImageVectors, index.BuildInfo{Embedder: ie.Name(), Model: ie.Model()}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Embedded %d image(s) into %s\n", len(res.ImageVectors), icfg.Resolve(icfg.File))
	return nil
}
