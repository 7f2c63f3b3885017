// Command gongwen formats government office documents from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hehezhang2025/gongwen-formatter/internal/config"
	"github.com/hehezhang2025/gongwen-formatter/internal/docx"
	"github.com/hehezhang2025/gongwen-formatter/internal/llm"
	"github.com/hehezhang2025/gongwen-formatter/internal/pipeline"
)

type cliFlags struct {
	mode       string
	configPath string
	outputDir  string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:           "gongwen [docx文件 ...]",
		Short:         "按照 GB/T 9704-2012 规范排版公文 docx 文件",
		Long: "按照《党政机关公文格式》（GB/T 9704-2012）对 docx 公文排版：\n" +
			"识别标题、主送机关、各级标题、正文、落款与附件，设置字体、\n" +
			"缩进、行距与页边距。规则模式离线运行，llm 模式调用本地 Ollama 模型。",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags, args)
		},
	}

	root.Flags().StringVarP(&flags.mode, "mode", "m", "", "排版模式：rule、llm 或 both（默认取配置）")
	root.Flags().StringVar(&flags.configPath, "config", "", "YAML 配置文件路径")
	root.Flags().StringVarP(&flags.outputDir, "out", "o", "", "输出目录，默认与输入文件同目录")
	root.Flags().BoolVar(&flags.verbose, "verbose", false, "输出调试日志")
	return root
}

func run(flags *cliFlags, args []string) error {
	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Load()
	if flags.configPath != "" {
		if err := cfg.ApplyFile(flags.configPath); err != nil {
			return err
		}
	}
	if flags.mode != "" {
		if !config.ValidMode(flags.mode) {
			return fmt.Errorf("无效的排版模式 %q（可选 rule、llm、both）", flags.mode)
		}
		cfg.Mode = flags.mode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var classifier *llm.Classifier
	if cfg.Mode != config.ModeRule {
		client := llm.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Temperature, cfg.Ollama.Timeout)
		classifier = llm.NewClassifier(client)
		defer client.Close()
	}

	formatter := pipeline.NewFormatter(log)
	ctx := context.Background()

	var failed int
	for _, path := range args {
		if !strings.EqualFold(filepath.Ext(path), ".docx") {
			log.Error("跳过非 docx 文件", "file", path)
			failed++
			continue
		}
		if err := formatFile(ctx, formatter, classifier, cfg, flags.outputDir, path); err != nil {
			log.Error("排版失败", "file", path, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d 个文件处理失败", failed)
	}
	return nil
}

func formatFile(ctx context.Context, formatter *pipeline.Formatter, classifier *llm.Classifier, cfg config.Config, outputDir, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取文件: %w", err)
	}

	dir := filepath.Dir(path)
	if outputDir != "" {
		dir = outputDir
	}
	base := filepath.Base(path)

	if cfg.Mode == config.ModeRule || cfg.Mode == config.ModeBoth {
		doc, err := docx.Parse(data)
		if err != nil {
			return fmt.Errorf("解析文档: %w", err)
		}
		rep := formatter.FormatRule(doc)
		out := filepath.Join(dir, "done_"+base)
		if err := doc.SaveTo(out); err != nil {
			return fmt.Errorf("保存输出: %w", err)
		}
		fmt.Printf("%s -> %s（段落 %d，编号修复 %d，结构修正 %d）\n",
			base, out, rep.Paragraphs, rep.NumberingRestored, rep.HeadingFixes)
	}

	if cfg.Mode == config.ModeLLM || cfg.Mode == config.ModeBoth {
		doc, err := docx.Parse(data)
		if err != nil {
			return fmt.Errorf("解析文档: %w", err)
		}
		rep, err := formatter.FormatLLM(ctx, doc, classifier)
		if err != nil {
			return fmt.Errorf("模型排版: %w", err)
		}
		out := filepath.Join(dir, "llm_"+base)
		if err := doc.SaveTo(out); err != nil {
			return fmt.Errorf("保存输出: %w", err)
		}
		fmt.Printf("%s -> %s（段落 %d）\n", base, out, rep.Paragraphs)
	}
	return nil
}
