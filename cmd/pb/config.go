package main

import (
	"fmt"
	"strconv"

	"github.com/paperbase/paperbase/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get or set global configuration",
	Long: `Read and write ~/.config/paperbase/config.yml.

Keys:
  data_dir               Library location (default ~/.local/share/paperbase)
  s2_api_key             Semantic Scholar API key
  crossref_mailto        Contact address for the Crossref polite pool
  similarity_threshold   Title similarity threshold for dedupe
  max_results            Default per-catalog result cap`,
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current configuration",
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

// ConfigUpdateResponse is the response for config set.
type ConfigUpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	if humanOutput {
		fmt.Printf("config file: %s\n", config.GlobalConfigPath())
		fmt.Printf("data_dir: %s\n", config.GetDataDir())
		if cfg.S2APIKey != "" {
			fmt.Println("s2_api_key: (set)")
		}
		if cfg.CrossrefMailto != "" {
			fmt.Printf("crossref_mailto: %s\n", cfg.CrossrefMailto)
		}
		if cfg.SimilarityThreshold > 0 {
			fmt.Printf("similarity_threshold: %g\n", cfg.SimilarityThreshold)
		}
		if cfg.MaxResults > 0 {
			fmt.Printf("max_results: %d\n", cfg.MaxResults)
		}
		return nil
	}
	return outputJSON(cfg)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	switch key {
	case "data_dir":
		cfg.DataDir = config.ExpandTilde(value)
	case "s2_api_key":
		cfg.S2APIKey = value
	case "crossref_mailto":
		cfg.CrossrefMailto = value
	case "similarity_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f > 1 {
			return fmt.Errorf("similarity_threshold must be a number in (0, 1]")
		}
		cfg.SimilarityThreshold = f
	case "max_results":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("max_results must be a non-negative integer")
		}
		cfg.MaxResults = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := cfg.Save(); err != nil {
		exitWithError(ExitConfigError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("set %s = %s\n", key, value)
		return nil
	}
	return outputJSON(ConfigUpdateResponse{Status: "updated", Key: key, Value: value})
}
