package cli

import (
	"github.com/spf13/cobra"

	"github.com/bannerlord/bannerlord/pkg/config"
	"github.com/bannerlord/bannerlord/pkg/pipeline"
)

// createOpts holds the command-line flags for the create command.
type createOpts struct {
	text     string  // banner text (empty for a text-free banner)
	width    int     // canvas width in pixels
	height   int     // canvas height in pixels
	style    string  // guidance style: minimal, geometric, split
	position string  // text position (empty defers to the advisor)
	fontSize float64 // text size in points
	color    string  // text color (empty defers to the advisor)
	generate bool    // use the diffusion service for the background
	seed     int64   // generation seed (0 means unseeded)
	refresh  bool    // bypass the advisor cache
	output   string  // artifact base name
	outDir   string  // artifact directory
}

// newCreateCmd creates the create command, the full banner flow.
//
// Default settings:
//   - canvas: 1024x512
//   - style: minimal
//   - font size: 72
//   - background: deterministic gradient (use --generate for diffusion)
func newCreateCmd() *cobra.Command {
	opts := createOpts{
		width:    pipeline.DefaultWidth,
		height:   pipeline.DefaultHeight,
		fontSize: pipeline.DefaultFontSize,
		output:   pipeline.DefaultOutputName,
	}

	cmd := &cobra.Command{
		Use:   "create [prompt]",
		Short: "Create a banner from a text prompt",
		Long: `Create runs the complete banner flow: the prompt goes to the design
advisor, a layout plan is sketched, a background is generated (or a gradient
synthesized), the text is composed on top, and PNG, SVG, and metadata
artifacts are exported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "banner text to compose")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "canvas height in pixels")
	cmd.Flags().StringVar(&opts.style, "style", "", "guidance style: minimal (default), geometric, split")
	cmd.Flags().StringVarP(&opts.position, "position", "p", "", "text position: center, left, right, top, bottom (default: advisor's suggestion)")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", opts.fontSize, "text size in points")
	cmd.Flags().StringVar(&opts.color, "color", "", "text color as hex (default: advisor's palette)")
	cmd.Flags().BoolVar(&opts.generate, "generate", false, "generate the background with the diffusion service")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "generation seed for reproducibility")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ask the advisor again instead of using the cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "artifact base name")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "artifact directory (default: outputs)")

	return cmd
}

func runCreate(cmd *cobra.Command, prompt string, opts *createOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.outDir == "" {
		opts.outDir = cfg.Output.Dir
	}

	runner, err := buildRunner(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.generate && runner.Generator == nil {
		printWarning("no diffusion endpoint configured, falling back to gradient background")
	}

	pipeOpts := pipeline.Options{
		Prompt:       prompt,
		Text:         opts.text,
		Width:        opts.width,
		Height:       opts.height,
		Style:        opts.style,
		Position:     opts.position,
		FontSize:     opts.fontSize,
		Color:        opts.color,
		UseGenerator: opts.generate,
		Refresh:      opts.refresh,
		OutputName:   opts.output,
		OutputDir:    opts.outDir,
		Logger:       logger,
	}
	if opts.seed != 0 {
		pipeOpts.Seed = &opts.seed
	}

	spinner := newSpinnerWithContext(ctx, "Composing banner...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		spinner.StopWithError("Banner creation failed")
		return err
	}
	spinner.Stop()

	printSuccess("Banner created")
	printKeyValue("Concept", result.Guidance.Concept)
	printPalette(result.Guidance.Colors)
	printAdviceStatus(result.CacheInfo.AdviseHit)
	for _, path := range result.Paths() {
		printFile(path)
	}

	return nil
}
