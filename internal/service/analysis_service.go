// Package service 提供了课堂提问分析相关的业务逻辑。
package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/spf13/afero"

	"its4teacher-go/internal/chain"
	"its4teacher-go/internal/classifier"
	"its4teacher-go/internal/model"
	"its4teacher-go/internal/pipeline"
	"its4teacher-go/pkg/log"
)

// ErrEmptyTranscript 表示请求里没有任何语句。
var ErrEmptyTranscript = errors.New("转写文本为空")

// TranscriptAnalysis 是单次实录分析的返回结构。
type TranscriptAnalysis struct {
	Questions  []model.QuestionRecord    `json:"questions"`
	Statistics model.SentimentStatistics `json:"statistics"`
}

// AnalysisService 接口定义了在线分析操作。
type AnalysisService interface {
	AnalyzeTranscript(ctx context.Context, t model.Transcript) (*TranscriptAnalysis, error)
	ClassifyThreeHe(ctx context.Context, records []model.QuestionRecord) (*model.ThreeHeReport, error)
	BuildChains(ctx context.Context, records []model.QuestionRecord) (*model.ChainReport, error)
}

type analysisService struct {
	// mu 串行化三何分类，远程分类器的请求间隔跨请求生效
	mu        sync.Mutex
	processor *pipeline.Processor
	threeHe   classifier.ThreeHeClassifier
	remote    bool
	now       func() time.Time
}

// NewAnalysisService 创建一个新的 AnalysisService 实例。
// remote 为 true 表示 threeHe 是远程分类器，统计中会预置"无"。
func NewAnalysisService(labeler *classifier.Labeler, threeHe classifier.ThreeHeClassifier, remote bool) AnalysisService {
	return &analysisService{
		// 在线请求不落盘，也不输出控制台摘要
		processor: pipeline.NewProcessor(afero.NewMemMapFs(), labeler, pipeline.WithOutput(io.Discard)),
		threeHe:   threeHe,
		remote:    remote,
		now:       time.Now,
	}
}

// AnalyzeTranscript 抽取并标注实录中的教师提问。
func (s *analysisService) AnalyzeTranscript(_ context.Context, t model.Transcript) (*TranscriptAnalysis, error) {
	if len(t.FullText) == 0 {
		return nil, ErrEmptyTranscript
	}
	records, stats := s.processor.AnalyzeTranscript(t)
	log.Infof("[AnalysisService] 分析完成, 语句 %d 条, 提问 %d 个", len(t.FullText), len(records))
	return &TranscriptAnalysis{Questions: records, Statistics: stats}, nil
}

// ClassifyThreeHe 对已标注的提问做三何分类，不写检查点。
func (s *analysisService) ClassifyThreeHe(ctx context.Context, records []model.QuestionRecord) (*model.ThreeHeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.processor.ClassifyThreeHe(ctx, records, pipeline.ThreeHeOptions{
		Classifier: s.threeHe,
		Remote:     s.remote,
	})
	if err != nil {
		return nil, err
	}
	log.Infof("[AnalysisService] 三何分类完成, 输入 %d 个, 输出 %d 个", len(records), report.Statistics.Total)
	return report, nil
}

// BuildChains 把已标注的提问切分为问题链。
func (s *analysisService) BuildChains(_ context.Context, records []model.QuestionRecord) (*model.ChainReport, error) {
	report := chain.Build(records, s.now())
	log.Infof("[AnalysisService] 问题链生成完成, 共 %d 条", report.Metadata.TotalChains)
	return report, nil
}
