package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"wastescanner/internal/app"
	"wastescanner/internal/config"
	"wastescanner/internal/dto"
	"wastescanner/internal/logger"
	"wastescanner/internal/service/ai"
	"wastescanner/internal/service/imagecodec"
	"wastescanner/internal/service/waste"

	"github.com/spf13/cobra"
)

// detectorFactory loads the detector used by the command.
type detectorFactory func(cfg *config.Config, labels ai.Labels) (ai.Detector, error)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// fileResult is one output line: the detect-waste response for a file, or the
// reason it was skipped.
type fileResult struct {
	File string `json:"file"`
	*dto.DetectResponse
	Error string `json:"error,omitempty"`
}

func newRootCommand(cfg *config.Config, newDetector detectorFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [image or directory...]",
		Short: "Classify waste in local images",
		Long: `Run the waste detection pipeline on image files and print one JSON
result per file. Directories are scanned for image files (not recursively).`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, newDetector, args)
		},
	}

	setupFlags(cmd, cfg)
	return cmd
}

// setupFlags binds the pipeline settings to flags, defaulting to the environment.
func setupFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVarP(&cfg.DetectorBackend, "backend", "b", cfg.DetectorBackend, "Detector backend: opencv, onnx")
	cmd.Flags().StringVarP(&cfg.ModelPath, "model", "m", cfg.ModelPath, "Path to the YOLO model")
	cmd.Flags().StringVar(&cfg.CategoriesPath, "categories", cfg.CategoriesPath, "Waste catalog YAML (default: built-in)")
	cmd.Flags().StringVar(&cfg.LabelsPath, "labels", cfg.LabelsPath, "Class names file (default: COCO)")
	cmd.Flags().Float64Var(&cfg.ConfidenceThreshold, "conf", cfg.ConfidenceThreshold, "Minimum detection confidence")
}

func run(cmd *cobra.Command, cfg *config.Config, newDetector detectorFactory, args []string) error {
	cfg.DetectorBackend = strings.ToLower(cfg.DetectorBackend)
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := collectImages(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", strings.Join(args, ", "))
	}

	log := logger.NewWriterLogger(cmd.ErrOrStderr())

	catalog, err := app.LoadCatalog(cfg)
	if err != nil {
		return fmt.Errorf("failed to load waste catalog: %w", err)
	}
	labels, err := app.LoadLabels(cfg)
	if err != nil {
		return fmt.Errorf("failed to load labels: %w", err)
	}

	detector, err := newDetector(cfg, labels)
	if err != nil {
		return err
	}
	defer detector.Close()

	classifier := waste.NewClassifier(detector, waste.NewResolver(catalog, log, nil), nil, log)

	out := json.NewEncoder(cmd.OutOrStdout())
	skipped := 0
	for _, file := range files {
		result := classifyFile(cmd, classifier, imagecodec.Decoder{MaxPixels: cfg.MaxImagePixels}, file)
		if result.Error != "" {
			log.Warning("Skipping %s: %s", file, result.Error)
			skipped++
		}
		if err := out.Encode(result); err != nil {
			return err
		}
	}

	log.Info("Classified %d image(s), skipped %d", len(files)-skipped, skipped)
	if skipped == len(files) {
		return fmt.Errorf("no image could be classified")
	}
	return nil
}

func classifyFile(cmd *cobra.Command, classifier *waste.Classifier, decoder imagecodec.Decoder, file string) fileResult {
	raw, err := os.ReadFile(file)
	if err != nil {
		return fileResult{File: file, Error: err.Error()}
	}

	decoded := decoder.DecodeBytes(raw)
	if !decoded.OK() {
		return fileResult{File: file, Error: decoded.Err.Error()}
	}

	result, err := classifier.Classify(cmd.Context(), decoded.Image)
	if err != nil {
		return fileResult{File: file, Error: err.Error()}
	}

	resp := dto.NewDetectResponse(result)
	return fileResult{File: file, DetectResponse: &resp}
}

// collectImages expands directories into the image files they contain.
func collectImages(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			files = append(files, filepath.Join(arg, entry.Name()))
		}
	}
	return files, nil
}
