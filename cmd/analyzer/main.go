// Package main 是批处理分析程序的入口点。
//
// 用法: analyzer [sentiment|threehe|chains]，默认依次执行全部三个阶段。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"its4teacher-go/internal/bootstrap"
	"its4teacher-go/internal/classifier"
	"its4teacher-go/internal/config"
	"its4teacher-go/internal/lexicon"
	"its4teacher-go/internal/pipeline"
	"its4teacher-go/pkg/log"
)

const (
	stageSentiment = "sentiment"
	stageThreeHe   = "threehe"
	stageChains    = "chains"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	stages := []string{stageSentiment, stageThreeHe, stageChains}
	if len(os.Args) > 1 {
		stages = os.Args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lex := lexicon.Default()
	fs := afero.NewOsFs()
	opts := []pipeline.Option{}
	if mirror := bootstrap.NewMirror(ctx, cfg.MinIO); mirror != nil {
		opts = append(opts, pipeline.WithMirror(mirror))
	}
	processor := pipeline.NewProcessor(fs, classifier.NewLabeler(lex), opts...)
	log.Infow("批处理开始", "runID", processor.RunID(), "stages", stages)

	for _, stage := range stages {
		if err := runStage(ctx, stage, cfg, fs, lex, processor); err != nil {
			log.Fatal(fmt.Sprintf("阶段 %s 执行失败", stage), err)
		}
	}
}

func runStage(ctx context.Context, stage string, cfg config.Config, fs afero.Fs, lex *lexicon.Lexicon, p *pipeline.Processor) error {
	a := cfg.Analyzer
	switch stage {
	case stageSentiment:
		return p.RunSentiment(ctx, a.TranscriptPath, a.SentimentPath)

	case stageThreeHe:
		threeHe := bootstrap.NewThreeHe(cfg, lex)
		defer threeHe.Close()

		opts := pipeline.ThreeHeOptions{
			Classifier:      threeHe.Classifier,
			Remote:          threeHe.Remote,
			CheckpointEvery: a.CheckpointEvery,
		}
		// 只有远程分类可能被中断，规则分类不写检查点
		if threeHe.Remote {
			opts.Sink = pipeline.NewFileCheckpointSink(fs, a.ThreeHePath)
		}
		return p.RunThreeHe(ctx, a.SentimentPath, a.ThreeHePath, opts)

	case stageChains:
		return p.RunChains(ctx, a.SentimentPath, a.ChainPath)

	default:
		return fmt.Errorf("未知阶段 %q，可选: %s, %s, %s", stage, stageSentiment, stageThreeHe, stageChains)
	}
}
