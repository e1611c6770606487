// Package pipeline 定义了课堂实录分析的批处理流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"its4teacher-go/internal/chain"
	"its4teacher-go/internal/classifier"
	"its4teacher-go/internal/extractor"
	"its4teacher-go/internal/model"
	"its4teacher-go/pkg/log"
)

// DefaultCheckpointEvery 是远程分类时写检查点的默认间隔（条）。
const DefaultCheckpointEvery = 10

// Processor 封装了批处理的所有依赖和逻辑。
type Processor struct {
	fs      afero.Fs
	labeler *classifier.Labeler
	mirror  ArtifactMirror
	runID   string
	now     func() time.Time
	out     io.Writer
}

// Option 修改 Processor 的可选依赖。
type Option func(*Processor)

// WithMirror 在写出最终产物后额外上传一份。
func WithMirror(m ArtifactMirror) Option {
	return func(p *Processor) { p.mirror = m }
}

// WithClock 替换时间来源，问题链报告的 processedAt 取自它。
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithRunID 指定本次运行的标识，默认随机生成。
func WithRunID(id string) Option {
	return func(p *Processor) { p.runID = id }
}

// WithOutput 指定摘要信息的输出位置，默认标准输出。
func WithOutput(w io.Writer) Option {
	return func(p *Processor) { p.out = w }
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(fs afero.Fs, labeler *classifier.Labeler, opts ...Option) *Processor {
	p := &Processor{
		fs:      fs,
		labeler: labeler,
		runID:   uuid.NewString(),
		now:     time.Now,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunID 返回本次运行的标识。
func (p *Processor) RunID() string {
	return p.runID
}

// AnalyzeTranscript 抽取教师提问并打上本地标签，返回记录和统计。
func (p *Processor) AnalyzeTranscript(t model.Transcript) ([]model.QuestionRecord, model.SentimentStatistics) {
	records := extractor.Extract(t.FullText)
	stats := model.NewSentimentStatistics()
	for i := range records {
		p.labeler.Label(&records[i])
		stats.Add(records[i])
	}
	return records, stats
}

// RunSentiment 执行情感分析阶段：读取实录，写出提问记录数组。
func (p *Processor) RunSentiment(ctx context.Context, inputPath, outputPath string) error {
	log.Infof("[Processor] 开始情感分析, 输入: %s", inputPath)

	var transcript model.Transcript
	if err := readJSON(p.fs, inputPath, &transcript); err != nil {
		return err
	}

	records, stats := p.AnalyzeTranscript(transcript)
	if err := p.writeArtifact(ctx, outputPath, records); err != nil {
		return err
	}

	log.Infow("情感分析完成", "questions", stats.Total, "answered", stats.Answered, "output", outputPath)
	PrintSentimentSummary(p.out, transcript, records, stats)
	return nil
}

// ThreeHeOptions 控制三何分类阶段的行为。
type ThreeHeOptions struct {
	Classifier classifier.ThreeHeClassifier
	// Remote 为 true 时统计中预置"无"，与远程分类可能返回的类型对应。
	Remote bool
	// CheckpointEvery 为 0 时使用 DefaultCheckpointEvery。
	CheckpointEvery int
	// Sink 为 nil 时不写检查点。
	Sink CheckpointSink
}

// ClassifyThreeHe 依次分类每条记录。
// 分类为"无"的记录计入 three_he 统计但不进入输出；四何统计只计入输出中的已知类型。
// ctx 被取消时立即返回 ctx.Err()，取消后得到的分类结果不计入，已写出的检查点保持不变。
func (p *Processor) ClassifyThreeHe(ctx context.Context, records []model.QuestionRecord, opts ThreeHeOptions) (*model.ThreeHeReport, error) {
	every := opts.CheckpointEvery
	if every <= 0 {
		every = DefaultCheckpointEvery
	}

	report := &model.ThreeHeReport{
		Questions:  make([]model.ThreeHeRecord, 0, len(records)),
		Statistics: model.NewThreeHeStatistics(opts.Remote),
	}
	for i, q := range records {
		if opts.Remote {
			fmt.Fprintf(p.out, "处理进度: %d/%d - 正在分析: %s...\n", i+1, len(records), preview(q.Question, 30))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		three := opts.Classifier.ClassifyThreeHe(ctx, q.Question)
		// 远程分类在取消后会退回后备规则，这条结果不可信
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Statistics.ThreeHe[three]++

		if three != model.ThreeHeNone {
			mat := q.Mat
			if mat == "" {
				mat = model.MatOther
			}
			report.Questions = append(report.Questions, model.ThreeHeRecord{
				Question:  q.Question,
				Mat:       mat,
				Three:     three,
				BeginTime: q.BeginTime,
			})
			if mat.IsKnown() {
				report.Statistics.Mat[mat]++
			}
		}
		report.Statistics.Total = len(report.Questions)

		processed := i + 1
		if opts.Sink != nil && processed%every == 0 {
			partial := &model.ThreeHeReport{
				Questions:  append([]model.ThreeHeRecord(nil), report.Questions...),
				Statistics: report.Statistics.Clone(),
			}
			if err := opts.Sink.Checkpoint(ctx, partial, processed, len(records)); err != nil {
				log.Warnf("[Processor] 写入检查点失败: %v", err)
			} else {
				fmt.Fprintf(p.out, "已保存中间结果: %d/%d\n", processed, len(records))
			}
		}
	}
	return report, nil
}

// preview 截取前 n 个字符。
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// RunThreeHe 执行三何分类阶段：读取情感分析结果，写出三何报告。
func (p *Processor) RunThreeHe(ctx context.Context, inputPath, outputPath string, opts ThreeHeOptions) error {
	if opts.Classifier == nil {
		return errors.New("三何分类器未配置")
	}
	log.Infof("[Processor] 开始三何分类, 输入: %s", inputPath)

	var records []model.QuestionRecord
	if err := readJSON(p.fs, inputPath, &records); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "共读取 %d 个问题\n", len(records))

	report, err := p.ClassifyThreeHe(ctx, records, opts)
	if err != nil {
		log.Warnw("三何分类被中断，未写出最终结果", "path", outputPath, "error", err)
		return fmt.Errorf("三何分类被中断: %w", err)
	}
	if err := p.writeArtifact(ctx, outputPath, report); err != nil {
		return err
	}

	log.Infow("三何分类完成", "input", len(records), "output", report.Statistics.Total, "path", outputPath)
	PrintThreeHeSummary(p.out, report)
	return nil
}

// RunChains 执行问题链阶段：读取情感分析结果，写出问题链报告。
func (p *Processor) RunChains(ctx context.Context, inputPath, outputPath string) error {
	log.Infof("[Processor] 开始生成问题链, 输入: %s", inputPath)

	var records []model.QuestionRecord
	if err := readJSON(p.fs, inputPath, &records); err != nil {
		return err
	}

	report := chain.Build(records, p.now())
	if err := p.writeArtifact(ctx, outputPath, report); err != nil {
		return err
	}

	log.Infow("问题链生成完成", "questions", report.Metadata.TotalQuestions, "chains", report.Metadata.TotalChains)
	PrintChainSummary(p.out, report)
	return nil
}

// writeArtifact 写出最终产物，配置了镜像时再上传到 runs/<runID>/<文件名>。
func (p *Processor) writeArtifact(ctx context.Context, path string, v interface{}) error {
	data, err := encodeJSON(v)
	if err != nil {
		return fmt.Errorf("编码 %s 失败: %w", path, err)
	}
	if err := writeFile(p.fs, path, data); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "结果已保存到: %s\n", path)

	if p.mirror != nil {
		name := fmt.Sprintf("runs/%s/%s", p.runID, filepath.Base(path))
		if err := p.mirror.Put(ctx, name, data); err != nil {
			log.Warnw("上传产物失败", "object", name, "error", err)
		}
	}
	return nil
}
