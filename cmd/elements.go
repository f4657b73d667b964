package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/mobile-cli/internal/locator"
	"github.com/mj1618/mobile-cli/internal/output"
	"github.com/spf13/cobra"
)

var elementsCmd = &cobra.Command{
	Use:   "elements <page-source.xml>",
	Short: "List interactable elements from a saved page source",
	Long: `Parse a saved page source XML file and list the interactable elements with
their locator strategies, without connecting to a device.

Useful for inspecting what an agent would see on a given screen:
  mobile-cli elements dump.xml
  mobile-cli elements --platform ios --filtered dump.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runElements,
}

func init() {
	rootCmd.AddCommand(elementsCmd)
	elementsCmd.Flags().String("platform", "", "Source platform: android, ios (default from config)")
	elementsCmd.Flags().Bool("filtered", false, "Compact view with a single best selector per element")
	elementsCmd.Flags().Bool("fetchable-only", false, "Keep only the single best locator per element")
}

func runElements(cmd *cobra.Command, args []string) error {
	platformName, _ := cmd.Flags().GetString("platform")
	if platformName == "" {
		platformName = cliConfig.Platform
	}
	filtered, _ := cmd.Flags().GetBool("filtered")
	fetchableOnly, _ := cmd.Flags().GetBool("fetchable-only")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	if filtered {
		elements, stats, err := locator.FilterSource(string(data), platformName)
		if err != nil {
			return err
		}
		return output.Print(sourceResult{Platform: platformName, Stats: stats, Elements: elements})
	}

	elements, stats, err := locator.Elements(string(data), platformName, locator.Options{FetchableOnly: fetchableOnly})
	if err != nil {
		return err
	}
	return output.Print(elementsResult{Platform: platformName, Stats: stats, Elements: elements})
}
