package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/adforge/internal/assets"
	"github.com/fpang/adforge/internal/campaign"
	"github.com/fpang/adforge/internal/cli"
	"github.com/fpang/adforge/internal/lambdaboot"
	"github.com/fpang/adforge/internal/metrics"
)

var (
	styleFlag string
	outFlag   string

	refineContextFlag string
	refineTextFlag    string
	refinePromptFlag  string
)

var campaignCmd = &cobra.Command{
	Use:   "campaign <image-file>",
	Short: "Generate a campaign for a local product photo",
	Long: `Campaign runs the full pipeline on a JPEG or PNG file and writes
campaign.json (analysis and copy) and, when the image model returned one,
styled.jpg or styled.png to the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runCampaign,
}

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Rewrite one piece of marketing text",
	Args:  cobra.NoArgs,
	RunE:  runRefine,
}

func init() {
	campaignCmd.Flags().StringVarP(&styleFlag, "style", "s", string(assets.DefaultStyle),
		"Style preset: "+strings.Join(styleNames(), ", "))
	campaignCmd.Flags().StringVarP(&outFlag, "out", "o", ".", "Output directory")

	refineCmd.Flags().StringVarP(&refineContextFlag, "context", "c", "", "Which field the text is, e.g. instagram_caption")
	refineCmd.Flags().StringVarP(&refineTextFlag, "text", "t", "", "Current text")
	refineCmd.Flags().StringVarP(&refinePromptFlag, "prompt", "p", "", "How to change it (asked for when omitted)")
	for _, name := range []string{"context", "text"} {
		_ = refineCmd.MarkFlagRequired(name)
	}
}

func styleNames() []string {
	names := make([]string, 0, len(assets.Styles))
	for _, s := range assets.Styles {
		names = append(names, string(s))
	}
	return names
}

func runCampaign(cmd *cobra.Command, args []string) error {
	metrics.SetOutput(io.Discard)

	data, imagePath, err := cli.ReadImageFile(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outFlag, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rt, err := boot(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := rt.Service.GenerateCampaign(cmd.Context(), campaign.Request{
		Image: campaign.EncodedImage(base64.StdEncoding.EncodeToString(data)),
		Style: styleFlag,
	})
	if err != nil {
		log.Error().Err(err).Str("file", imagePath).Msg("Campaign generation failed")
		return err
	}

	// The original image is already on disk; keep the JSON readable.
	result.OriginalImage = nil
	styled := result.StyledImage
	result.StyledImage = nil

	jsonPath := filepath.Join(outFlag, "campaign.json")
	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode campaign: %w", err)
	}
	if err := os.WriteFile(jsonPath, append(body, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}
	fmt.Printf("Campaign written to %s (%s)\n", jsonPath, cli.FormatElapsed(time.Since(start)))

	if styled == nil {
		fmt.Println("The image model returned no styled image.")
		return nil
	}
	imageBytes, err := base64.StdEncoding.DecodeString(*styled)
	if err != nil {
		return fmt.Errorf("failed to decode styled image: %w", err)
	}
	styledPath := filepath.Join(outFlag, "styled"+result.StyledImageFormat.Extension())
	if err := os.WriteFile(styledPath, imageBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", styledPath, err)
	}
	fmt.Printf("Styled image written to %s\n", styledPath)
	return nil
}

func runRefine(cmd *cobra.Command, args []string) error {
	metrics.SetOutput(io.Discard)

	if refinePromptFlag == "" {
		refinePromptFlag = cli.PromptLine(os.Stdin, os.Stderr, "How should the text change?", "")
		if refinePromptFlag == "" {
			return errors.New("a refinement prompt is required")
		}
	}

	rt, err := boot(cmd)
	if err != nil {
		return err
	}

	result, err := rt.Service.Refine(cmd.Context(), campaign.RefineRequest{
		CurrentText:      refineTextFlag,
		RefinementPrompt: refinePromptFlag,
		Context:          refineContextFlag,
	})
	if err != nil {
		log.Error().Err(err).Msg("Refinement failed")
		return err
	}
	fmt.Println(result.RefinedText)
	return nil
}

// boot builds the runtime, printing a hint for credential problems.
func boot(cmd *cobra.Command) (*lambdaboot.Runtime, error) {
	rt, err := lambdaboot.Boot(cmd.Context(), cfg, lambdaboot.Options{ValidateGeminiKey: validateKeyFlag})
	if err != nil {
		if hint := cli.CredentialHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		log.Error().Err(err).Msg("Startup failed")
		return nil, err
	}
	return rt, nil
}
