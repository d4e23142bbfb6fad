package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TIANLI0/segcheck/imgio"
	"github.com/TIANLI0/segcheck/service"
	"github.com/TIANLI0/segcheck/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	combineInput      string
	combineOutput     string
	combinePreviewDir string
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Build a combined image from an image-with-mask JSON record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		core, err := loadCore()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(combineInput)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		cmd.SilenceUsage = true
		x, err := service.DecodeImageWithMask(data)
		if err != nil {
			return err
		}
		out, err := service.CombineImage(x, core)
		if err != nil {
			return err
		}

		encoded, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("encode combined image: %w", err)
		}
		if combineOutput == "" || combineOutput == "-" {
			if _, err := cmd.OutOrStdout().Write(append(encoded, '\n')); err != nil {
				return err
			}
		} else if err := os.WriteFile(combineOutput, encoded, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		if combinePreviewDir != "" {
			if err := os.MkdirAll(combinePreviewDir, 0o755); err != nil {
				return fmt.Errorf("create preview dir: %w", err)
			}
			for ch := core.NumColors; ch < out.Shape[0]; ch++ {
				png, err := imgio.EncodeLabelPreview(out, ch)
				if err != nil {
					return err
				}
				name := filepath.Join(combinePreviewDir, fmt.Sprintf("label_%02d.png", ch-core.NumColors))
				if err := os.WriteFile(name, png, 0o644); err != nil {
					return fmt.Errorf("write preview: %w", err)
				}
			}
		}

		utils.Logger.Info("combined image written",
			zap.String("output", combineOutput),
			zap.Ints("shape", out.Shape))
		return nil
	},
}

func init() {
	combineCmd.Flags().StringVar(&combineInput, "input", "", "image-with-mask JSON record")
	combineCmd.Flags().StringVar(&combineOutput, "output", "-", "combined image JSON output (- for stdout)")
	combineCmd.Flags().StringVar(&combinePreviewDir, "preview-dir", "", "write a PNG per label channel to this directory")
	_ = combineCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(combineCmd)
}
