package cmd

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-evaluator/internal/logger"
	"github.com/spigell/resume-evaluator/internal/skills"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the roles known to the skill catalog with their reference skills",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		catalog, err := skills.LoadCatalog(viper.GetString("catalog-file"))
		if err != nil {
			logger.Fatal("loading skill catalog", zap.Error(err))
		}

		printRoles(cmd.OutOrStdout(), catalog)
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}

func printRoles(w io.Writer, catalog *skills.Catalog) {
	for _, role := range catalog.Roles() {
		fmt.Fprintf(w, "%s\n  skills: %s\n", role.Name, strings.Join(role.Skills, ", "))
		if len(role.Keywords) > 0 {
			fmt.Fprintf(w, "  keywords: %s\n", strings.Join(role.Keywords, ", "))
		}
	}
}
