// Command resumematch scores résumés against job descriptions. It runs as
// an HTTP service, a RabbitMQ worker or a one-shot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	appconfig "github.com/muhammadolammi/resumematch/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const app = "resumematch"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "Match a résumé against a job description",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("skills-db", "skills_db.json", "path to a JSON list of skill terms")
	rootCmd.PersistentFlags().Bool("match-phrases", false, "also match multi-word skills across consecutive tokens")
	rootCmd.PersistentFlags().String("tokenizer", "prose", "tokenizer used for skill extraction (prose|fields)")

	for _, name := range []string{"debug", "json", "skills-db", "match-phrases", "tokenizer"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	if err := appconfig.SetDefaults(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading config %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
