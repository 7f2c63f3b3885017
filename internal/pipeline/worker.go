package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hehezhang2025/gongwen-formatter/internal/config"
	"github.com/hehezhang2025/gongwen-formatter/internal/docx"
	"github.com/hehezhang2025/gongwen-formatter/internal/llm"
)

// Worker formats a single document job.
type Worker struct {
	formatter  *Formatter
	classifier *llm.Classifier
	outputDir  string
	log        *slog.Logger
}

func NewWorker(formatter *Formatter, classifier *llm.Classifier, outputDir string, log *slog.Logger) *Worker {
	return &Worker{
		formatter:  formatter,
		classifier: classifier,
		outputDir:  outputDir,
		log:        log,
	}
}

// Process runs the formatting passes requested by the job's mode. Each pass
// parses the uploaded bytes fresh so the rule and model paths never see each
// other's edits.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "mode", job.Mode)

	ruleOK := false
	llmOK := false
	ruleWanted := job.Mode == config.ModeRule || job.Mode == config.ModeBoth
	llmWanted := job.Mode == config.ModeLLM || job.Mode == config.ModeBoth

	if ruleWanted {
		job.SetStatus(StatusFormatting, "rule")
		report, path, err := w.runRule(job)
		if err != nil {
			log.Error("rule formatting failed", "error", err)
			job.AddError(fmt.Sprintf("rule: %s", err))
		} else {
			job.AddOutput(Output{
				Label:    "rule",
				Filename: "done_" + job.Filename,
				Path:     path,
				Report:   *report,
			})
			ruleOK = true
			log.Info("rule formatting complete", "paragraphs", report.Paragraphs)
		}
	}

	if llmWanted {
		job.SetStatus(StatusFormatting, "llm")
		report, path, err := w.runLLM(ctx, job)
		if err != nil {
			log.Error("llm formatting failed", "error", err)
			job.AddError(fmt.Sprintf("llm: %s", err))
		} else {
			job.AddOutput(Output{
				Label:    "llm",
				Filename: "llm_" + job.Filename,
				Path:     path,
				Report:   *report,
			})
			llmOK = true
			log.Info("llm formatting complete", "paragraphs", report.Paragraphs)
		}
	}

	succeeded := 0
	wanted := 0
	if ruleWanted {
		wanted++
		if ruleOK {
			succeeded++
		}
	}
	if llmWanted {
		wanted++
		if llmOK {
			succeeded++
		}
	}

	switch {
	case succeeded == wanted:
		job.SetStatus(StatusCompleted, "done")
	case succeeded > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "done")
	}
}

func (w *Worker) runRule(job *Job) (*Report, string, error) {
	doc, err := docx.Parse(job.FileData())
	if err != nil {
		return nil, "", fmt.Errorf("parse: %w", err)
	}
	report := w.formatter.FormatRule(doc)
	path := filepath.Join(w.outputDir, job.ID+"_done_"+job.Filename)
	if err := doc.SaveTo(path); err != nil {
		return nil, "", fmt.Errorf("save output: %w", err)
	}
	return report, path, nil
}

func (w *Worker) runLLM(ctx context.Context, job *Job) (*Report, string, error) {
	if w.classifier == nil {
		return nil, "", fmt.Errorf("model classifier not configured")
	}
	doc, err := docx.Parse(job.FileData())
	if err != nil {
		return nil, "", fmt.Errorf("parse: %w", err)
	}
	report, err := w.formatter.FormatLLM(ctx, doc, w.classifier)
	if err != nil {
		return nil, "", err
	}
	path := filepath.Join(w.outputDir, job.ID+"_llm_"+job.Filename)
	if err := doc.SaveTo(path); err != nil {
		return nil, "", fmt.Errorf("save output: %w", err)
	}
	return report, path, nil
}
