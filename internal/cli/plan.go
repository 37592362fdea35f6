package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bannerlord/bannerlord/pkg/layout"
	"github.com/bannerlord/bannerlord/pkg/pipeline"
	"github.com/bannerlord/bannerlord/pkg/render/sink"
)

// newPlanCmd creates the plan command, a dry run of the layout stage.
// It renders only the guidance sketch, which is useful for checking what
// the image generator will be conditioned on before paying for a
// generation.
func newPlanCmd() *cobra.Command {
	var (
		width    int
		height   int
		style    string
		position string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Render the layout guidance sketch without creating a banner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateStyle(style); err != nil {
				return err
			}
			if err := pipeline.ValidatePosition(position); err != nil {
				return err
			}

			regions, err := layout.Plan(width, height, layout.Style(style), layout.Position(position))
			if err != nil {
				return err
			}

			sketch := layout.ControlImage(width, height, regions)
			if err := sink.WritePNG(sketch, output); err != nil {
				return err
			}

			printSuccess("Layout plan sketched")
			for _, r := range regions {
				printDetail("%-16s [%d,%d → %d,%d]", string(r.Role), r.X0, r.Y0, r.X1, r.Y1)
			}
			if area, ok := layout.TextAreaOf(regions); ok {
				printKeyValue("Text center", fmt.Sprintf("(%.0f, %.0f)", area.CenterX(), area.CenterY()))
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", pipeline.DefaultWidth, "canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", pipeline.DefaultHeight, "canvas height in pixels")
	cmd.Flags().StringVar(&style, "style", "", "guidance style: minimal (default), geometric, split")
	cmd.Flags().StringVarP(&position, "position", "p", "", "text position: center (default), left, right, top, bottom")
	cmd.Flags().StringVarP(&output, "output", "o", "plan.png", "output PNG path")

	return cmd
}
