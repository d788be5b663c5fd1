// Package main 提供命令行工具：解析单份简历、离线给一批简历排名、生成示例配置
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"resume-match-go/internal/config"
	"resume-match-go/internal/embedding"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/processor"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "resumectl",
	Short:         "Resume parsing and ranking tool",
	Long:          "resumectl parses resumes into structured profiles and ranks them against a job description without running the HTTP service.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (empty: defaults + environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level to stderr")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// pipeline 命令行使用的解析和排名组件
type pipeline struct {
	extractor *parser.Registry
	builder   *processor.ProfileBuilder
	ranker    *matcher.Ranker
}

// newPipeline 加载配置并组装组件，日志写到 stderr 以免污染 JSON 输出
func newPipeline(ctx context.Context, stderr io.Writer) (*pipeline, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger.Logger = logger.New(stderr, logger.Config{Format: "pretty", TimeFormat: "15:04:05"}).Level(level)

	emb := embedding.NewService(cfg.Embedding)
	p := parser.New(parser.OptionsFromConfig(cfg.Parser)...)
	return &pipeline{
		extractor: parser.NewRegistry(ctx),
		builder:   processor.NewProfileBuilder(p, emb),
		ranker:    matcher.NewRanker(emb, matcher.WithKeywordLimit(cfg.Ranking.CommonKeywordLimit)),
	}, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
