package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-evaluator/internal/document"
	"github.com/spigell/resume-evaluator/internal/logger"
)

const (
	stagedPrefix     = "resume_"
	stagedTimeLayout = "20060102_150405"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [path]",
	Short: "Evaluate a résumé and print the extracted details, inferred role and skills score",
	Long: `Evaluate a résumé file. The file is first copied into the uploads directory
under a timestamped name, unless --no-stage is set. Without a path, a staged
résumé is picked interactively.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		evaluate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().Bool("no-stage", false, "evaluate the file in place instead of copying it to the uploads directory")
	evaluateCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	evaluateCmd.Flags().StringP("uploads-dir", "u", "", "directory for staged résumés (default is uploads)")
	evaluateCmd.Flags().String("role-provider", "", "role inference provider: keyword or gemini")
	evaluateCmd.Flags().Duration("timeout", 0, "evaluation timeout (default 1m)")

	viper.BindPFlag("uploads-dir", evaluateCmd.Flags().Lookup("uploads-dir"))
	viper.BindPFlag("role.provider", evaluateCmd.Flags().Lookup("role-provider"))
	viper.BindPFlag("evaluation.timeout", evaluateCmd.Flags().Lookup("timeout"))
}

func evaluate(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting the resume-evaluator", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	format, _ := cmd.Flags().GetString("output")
	if format != outputText && format != outputJSON {
		logger.Fatal("unsupported output format", zap.String("output", format))
	}

	p, err := newPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	ref, err := resolveDocument(cmd, args, config, time.Now())
	if err != nil {
		logger.Fatal("resolving the résumé", zap.Error(err))
	}

	res := p.evaluator.Evaluate(ctx, ref)

	if err := render(cmd.OutOrStdout(), format, res); err != nil {
		logger.Fatal("rendering the result", zap.Error(err))
	}

	if res.Failed() {
		logger.Fatal("exiting", zap.Error(res.Err))
	}
}

// resolveDocument returns the reference the pipeline should read: the staged
// copy of the given path, the path itself with --no-stage, or a staged
// résumé picked from the uploads directory.
func resolveDocument(cmd *cobra.Command, args []string, config *Config, now time.Time) (document.Reference, error) {
	if len(args) == 0 {
		return pickStaged(config.UploadsDir)
	}

	src := strings.TrimSpace(args[0])
	if noStage, _ := cmd.Flags().GetBool("no-stage"); noStage {
		return document.Reference(src), nil
	}

	ref, err := stageFile(src, config.UploadsDir, now)
	if errors.Is(err, document.ErrNotFound) {
		// the pipeline reports missing documents as a failed evaluation
		return document.Reference(src), nil
	}
	return ref, err
}

// stageFile copies src into dir as resume_<YYYYmmdd_HHMMSS>.<ext>. A numeric
// suffix keeps files staged within the same second apart.
func stageFile(src, dir string, now time.Time) (document.Reference, error) {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", document.ErrNotFound, src)
		}
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	return writeStaged(in, dir, strings.ToLower(filepath.Ext(src)), now)
}

// writeStaged stores r under a fresh staged name in dir. A partly written
// file is removed so it is never offered for evaluation.
func writeStaged(r io.Reader, dir, ext string, now time.Time) (document.Reference, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create uploads directory: %w", err)
	}

	base := stagedPrefix + now.Format(stagedTimeLayout)

	var (
		out *os.File
		err error
	)
	for i := 0; ; i++ {
		name := base + ext
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", base, i, ext)
		}

		out, err = os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create staged file: %w", err)
		}
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("copy into %s: %w", out.Name(), err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("close staged file: %w", err)
	}

	return document.Reference(out.Name()), nil
}

// listStaged returns staged résumés in dir, newest first.
func listStaged(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read uploads directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), stagedPrefix) {
			continue
		}
		names = append(names, entry.Name())
	}

	// the timestamp layout sorts lexically
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func pickStaged(dir string) (document.Reference, error) {
	names, err := listStaged(dir)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no staged résumés found in %s", dir)
	}

	prompt := promptui.Select{
		Label: "Choose a résumé and press ENTER",
		Items: names,
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return document.Reference(filepath.Join(dir, selected)), nil
}
