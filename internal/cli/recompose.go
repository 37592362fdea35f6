package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bannerlord/bannerlord/pkg/render"
	"github.com/bannerlord/bannerlord/pkg/render/sink"
)

// newRecomposeCmd creates the recompose command.
//
// Recompose is the import half of the round trip: it loads a previously
// exported metadata document and its background raster, re-renders the
// text layers, and writes a fresh PNG. Editing the metadata between
// export and recompose is the supported way to tweak a banner without
// re-running the advisor or generator.
func newRecomposeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "recompose [metadata.json]",
		Short: "Rebuild a banner from exported metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecompose(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG path (default: derived from the metadata path)")

	return cmd
}

func runRecompose(cmd *cobra.Command, metaPath, output string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	track := newProgress(logger)

	background, layers, err := sink.ImportMetadata(metaPath)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %d text layers from %s", len(layers), metaPath)

	compositor := render.NewCompositor(nil)
	img, err := compositor.Compose(background, layers)
	if err != nil {
		return err
	}

	if output == "" {
		output = recomposedPath(metaPath)
	}
	if err := sink.WritePNG(img, output); err != nil {
		return err
	}

	track.done("Recomposed banner")
	printSuccess("Banner recomposed")
	printFile(output)
	return nil
}

// recomposedPath derives the output path from the metadata path:
// outputs/banner_metadata.json becomes outputs/banner_recomposed.png.
func recomposedPath(metaPath string) string {
	base := strings.TrimSuffix(metaPath, filepath.Ext(metaPath))
	base = strings.TrimSuffix(base, "_metadata")
	return base + "_recomposed.png"
}
