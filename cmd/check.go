package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/TIANLI0/segcheck/config"
	"github.com/TIANLI0/segcheck/imgio"
	"github.com/TIANLI0/segcheck/model"
	"github.com/TIANLI0/segcheck/service"
	"github.com/TIANLI0/segcheck/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	checkImage          string
	checkMask           string
	checkClasses        string
	checkBinaryMask     bool
	checkInput          string
	checkExhaustive     bool
	checkSeed           int64
	checkTrainImageSize int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a config, an image with mask, or a combined image",
}

var checkConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate the core config",
	RunE: func(cmd *cobra.Command, _ []string) error {
		core, err := loadCore()
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		if err := service.ValidateConfig(core, checkTrainImageSize); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d colors, %d classes, %d offsets\n",
			core.NumColors, core.NumClasses, core.NumOffsets())
		return nil
	},
}

var checkImageCmd = &cobra.Command{
	Use:   "image",
	Short: "Validate an image file and its object mask file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		core, err := loadCore()
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		imgData, err := os.ReadFile(checkImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		maskData, err := os.ReadFile(checkMask)
		if err != nil {
			return fmt.Errorf("read mask: %w", err)
		}
		img, err := imgio.DecodeImage(imgData, core.NumColors)
		if err != nil {
			return err
		}
		mask, err := imgio.DecodeMask(maskData)
		if err != nil {
			return err
		}

		var classes []int
		if checkBinaryMask {
			var n int
			mask, n, err = imgio.LabelComponents(mask)
			if err != nil {
				return err
			}
			classes = make([]int, n)
			for i := 1; i < n; i++ {
				classes[i] = 1
			}
		} else {
			classes, err = splitInts(checkClasses)
			if err != nil {
				return fmt.Errorf("parse --classes: %w", err)
			}
		}

		md5, _ := utils.FileMD5(checkImage)
		utils.Logger.Debug("checking image with mask",
			zap.String("image", checkImage),
			zap.String("md5", md5),
			zap.Ints("img_shape", img.Shape),
			zap.Int("num_objects", len(classes)))

		x := &model.ImageWithMask{Img: img, Mask: mask, ObjectClass: classes}
		return report(cmd, model.ReportImageWithMask, img.Shape, service.ValidateImageWithMask(x, core))
	},
}

var checkRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Validate an image-with-mask JSON record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		core, err := loadCore()
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		data, err := os.ReadFile(checkInput)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		x, err := service.DecodeImageWithMask(data)
		if err == nil {
			err = service.ValidateImageWithMask(x, core)
		}
		var shape []int
		if x != nil && x.Img != nil {
			shape = x.Img.Shape
		}
		return report(cmd, model.ReportImageWithMask, shape, err)
	},
}

var checkCombinedCmd = &cobra.Command{
	Use:   "combined",
	Short: "Validate a combined image JSON array",
	RunE: func(cmd *cobra.Command, _ []string) error {
		core, err := loadCore()
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		data, err := os.ReadFile(checkInput)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		vc := loadConfig().Validator
		if cmd.Flags().Changed("exhaustive") {
			vc.LabelCheck = config.LabelCheckSample
			if checkExhaustive {
				vc.LabelCheck = config.LabelCheckExhaustive
			}
		}
		if cmd.Flags().Changed("seed") {
			vc.Seed = checkSeed
		}
		validator := service.NewValidatorFromConfig(&vc)

		x, err := service.DecodeArray(data)
		if err == nil {
			err = validator.ValidateCombinedImage(x, core)
		}
		var shape []int
		if x != nil {
			shape = x.Shape
		}
		return report(cmd, model.ReportCombined, shape, err)
	},
}

func report(cmd *cobra.Command, kind string, shape []int, err error) error {
	r := service.NewReport(kind, "", shape, err)
	if r.Valid {
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %s %v\n", kind, shape)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rejected: %s %v\n  %s\n", kind, shape, r.Error)
	return err
}

func splitInts(s string) ([]int, error) {
	out := []int{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func init() {
	checkConfigCmd.Flags().IntVar(&checkTrainImageSize, "train-image-size", 0, "training image size to check offsets and padding against")

	checkImageCmd.Flags().StringVar(&checkImage, "image", "", "image file")
	checkImageCmd.Flags().StringVar(&checkMask, "mask", "", "object mask file")
	checkImageCmd.Flags().StringVar(&checkClasses, "classes", "", "comma separated class of each object id")
	checkImageCmd.Flags().BoolVar(&checkBinaryMask, "binary-mask", false, "treat the mask as binary foreground and label its connected regions as class 1")
	_ = checkImageCmd.MarkFlagRequired("image")
	_ = checkImageCmd.MarkFlagRequired("mask")

	checkRecordCmd.Flags().StringVar(&checkInput, "input", "", "image-with-mask JSON record")
	_ = checkRecordCmd.MarkFlagRequired("input")

	checkCombinedCmd.Flags().StringVar(&checkInput, "input", "", "combined image JSON array")
	checkCombinedCmd.Flags().BoolVar(&checkExhaustive, "exhaustive", false, "check every label entry instead of one random sample (default from validator.label_check)")
	checkCombinedCmd.Flags().Int64Var(&checkSeed, "seed", 0, "random seed for the sampled label check, 0 uses the clock (default from validator.seed)")
	_ = checkCombinedCmd.MarkFlagRequired("input")

	checkCmd.AddCommand(checkConfigCmd, checkImageCmd, checkRecordCmd, checkCombinedCmd)
	rootCmd.AddCommand(checkCmd)
}
