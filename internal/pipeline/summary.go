package pipeline

import (
	"fmt"
	"io"
	"strings"

	"its4teacher-go/internal/model"
)

// sampleCount 是情感分析摘要里展示的示例数量。
const sampleCount = 3

// PrintSentimentSummary 输出情感分析阶段的控制台摘要。
func PrintSentimentSummary(w io.Writer, t model.Transcript, records []model.QuestionRecord, stats model.SentimentStatistics) {
	fmt.Fprintf(w, "视频时长: %v秒\n", t.VideoDuration)
	fmt.Fprintf(w, "总句子数: %d\n", len(t.FullText))
	fmt.Fprintf(w, "\n提取到 %d 个教师提问\n", len(records))

	matKeys := make([]string, 0, len(model.MatTypes))
	for _, m := range model.MatTypes {
		matKeys = append(matKeys, string(m))
	}
	bloomKeys := make([]string, 0, len(model.BloomLevels))
	for _, b := range model.BloomLevels {
		bloomKeys = append(bloomKeys, string(b))
	}
	sentimentKeys := make([]string, 0, len(model.SentimentClasses))
	for _, c := range model.SentimentClasses {
		sentimentKeys = append(sentimentKeys, string(c))
	}

	fmt.Fprintf(w, "\n四何分类统计: %s\n", formatCounts(matKeys, func(k string) int { return stats.Mat[model.MatType(k)] }))
	fmt.Fprintf(w, "布鲁姆层级统计: %s\n", formatCounts(bloomKeys, func(k string) int { return stats.Bloom[model.BloomLevel(k)] }))
	fmt.Fprintf(w, "情感分类统计: %s\n", formatCounts(sentimentKeys, func(k string) int { return stats.Sentiment[model.SentimentClass(k)] }))
	fmt.Fprintf(w, "有学生回答的问题: %d 个\n", stats.Answered)

	if len(records) == 0 {
		return
	}
	fmt.Fprintf(w, "\n前%d个问题示例:\n", sampleCount)
	for i, q := range records {
		if i == sampleCount {
			break
		}
		fmt.Fprintf(w, "\n问题 %d:\n", i+1)
		fmt.Fprintf(w, "  内容: %s\n", q.Question)
		fmt.Fprintf(w, "  时间: %vs - %vs\n", q.BeginTime, q.EndTime)
		fmt.Fprintf(w, "  类型: %s / %s\n", q.Mat, q.BlmType)
		fmt.Fprintf(w, "  情感: %s (得分: %.3f)\n", q.Sentiment.Classification, q.Sentiment.Score)
		fmt.Fprintf(w, "  有回答: %v\n", q.Answered)
	}
}

// PrintThreeHeSummary 输出三何分类阶段的控制台摘要。
func PrintThreeHeSummary(w io.Writer, report *model.ThreeHeReport) {
	s := report.Statistics

	matKeys := make([]string, 0, len(model.MatTypes))
	for _, m := range model.MatTypes {
		matKeys = append(matKeys, string(m))
	}
	threeKeys := make([]string, 0, len(model.ThreeHeTypes)+1)
	for _, t := range model.ThreeHeTypes {
		threeKeys = append(threeKeys, string(t))
	}
	if _, ok := s.ThreeHe[model.ThreeHeNone]; ok {
		threeKeys = append(threeKeys, string(model.ThreeHeNone))
	}

	fmt.Fprintf(w, "\n处理完成！共分析 %d 个问题\n", s.Total)
	fmt.Fprintf(w, "四何统计: %s\n", formatCounts(matKeys, func(k string) int { return s.Mat[model.MatType(k)] }))
	fmt.Fprintf(w, "三何统计: %s\n", formatCounts(threeKeys, func(k string) int { return s.ThreeHe[model.ThreeHeType(k)] }))
}

// PrintChainSummary 输出问题链阶段的控制台摘要。
func PrintChainSummary(w io.Writer, report *model.ChainReport) {
	fmt.Fprintf(w, "共 %d 个问题, 生成 %d 条问题链\n", report.Metadata.TotalQuestions, report.Metadata.TotalChains)
	for _, c := range report.Chains {
		fmt.Fprintf(w, "  链 %d: %d 个问题, %d-%d 分钟, 主题 %s, 最高层级 %s, %s\n",
			c.ID, c.QuestionCount, c.Timeline.StartMinute, c.Timeline.EndMinute,
			c.PrimaryTopic, c.PrimaryBloomLevel, c.Characteristics.BloomProgression.Pattern)
	}
}

// formatCounts 按给定顺序格式化计数，形如 {是何: 2, 如何: 0}。
func formatCounts(keys []string, count func(string) int) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, count(k)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
