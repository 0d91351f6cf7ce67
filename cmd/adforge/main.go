// Command adforge runs the AdForge API locally and exposes the campaign
// pipeline on the command line.
package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/adforge/internal/config"
	"github.com/fpang/adforge/internal/logging"
)

// Flags shared by every subcommand. Unset flags leave the environment
// configuration alone.
var (
	backendFlag     string
	regionFlag      string
	textModelFlag   string
	imageModelFlag  string
	validateKeyFlag bool
)

// cfg is loaded once in PersistentPreRunE.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "adforge",
	Short: "Turn a product photo into a marketing campaign",
	Long: `AdForge analyses a product photo with a multimodal model, writes marketing
copy for it and renders a restyled product shot.

Configuration is read from the environment and an optional .env file
(ADFORGE_BACKEND, AWS_REGION, GEMINI_API_KEY, ...). Flags override it.

Examples:
  adforge serve --port 8000
  adforge campaign ./mug.jpg --style luxury --out ./out
  adforge refine --context instagram_caption --text "Meet the mug" --prompt "more playful"
  adforge serve --backend gemini`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&backendFlag, "backend", "", "Model backend: bedrock or gemini")
	pf.StringVar(&regionFlag, "region", "", "AWS region for Bedrock and SSM")
	pf.StringVar(&textModelFlag, "text-model", "", "Override the text/vision model ID")
	pf.StringVar(&imageModelFlag, "image-model", "", "Override the image model ID")
	pf.BoolVar(&validateKeyFlag, "validate-key", false, "Check the Gemini API key before running")

	rootCmd.AddCommand(serveCmd, campaignCmd, refineCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	logging.Init()

	loaded, err := config.FromEnvFile()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		loaded.Backend = strings.ToLower(backendFlag)
	}
	if flags.Changed("region") {
		loaded.Region = regionFlag
	}
	if flags.Changed("text-model") {
		loaded.TextModel = textModelFlag
	}
	if flags.Changed("image-model") {
		loaded.ImageModel = imageModelFlag
	}
	if flags.Changed("port") {
		loaded.Port = portFlag
	}

	if err := loaded.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return err
	}
	cfg = loaded
	return nil
}
