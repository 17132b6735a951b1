package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-evaluator/internal/evaluation"
	"github.com/spigell/resume-evaluator/internal/logger"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the evaluation pipeline stages and whether they are enabled",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		p, err := newPipeline(context.Background(), config, logger)
		if err != nil {
			logger.Fatal("building the pipeline", zap.Error(err))
		}

		if err := printStages(cmd.OutOrStdout(), evaluation.Describe(p.stages)); err != nil {
			logger.Fatal("printing stages", zap.Error(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nsupported formats: %s\n", strings.Join(p.loader.Formats(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(stagesCmd)
}

func printStages(w io.Writer, statuses []evaluation.Status) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tPHASE\tENABLED\tDETAILS")
	for _, status := range statuses {
		details := formatDetails(status.Details)
		if !status.Enabled && status.Reason != "" {
			details = strings.TrimSpace(details + " reason=" + status.Reason)
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", status.Name, status.Phase, status.Enabled, details)
	}
	return tw.Flush()
}

func formatDetails(details map[string]string) string {
	keys := make([]string, 0, len(details))
	for key := range details {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+details[key])
	}
	return strings.Join(parts, " ")
}
