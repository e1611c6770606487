// Package chain 把已分类的教师提问按时间和主题切分为问题链。
package chain

import (
	"math"
	"sort"
	"time"

	"its4teacher-go/internal/model"
)

const (
	// BreakGap 超过该间隔（秒）必定开始新链。
	BreakGap = 60.0
	// TopicGap 主题变化且间隔超过该值时开始新链。
	TopicGap = 30.0
	// FallbackGap 链内已到分析及以上层级、当前问题回落到理解及以下且间隔超过该值时开始新链。
	FallbackGap = 20.0
)

const (
	patternAscending  = "递进为主"
	patternDescending = "回退为主"
	patternStable     = "稳定为主"
)

// otherBloom 用于缺失布鲁姆层级的记录，权重为 0。
const otherBloom model.BloomLevel = "其他"

type builder struct {
	chain       model.QuestionChain
	topicOrder  []model.MatType
	topicCounts map[model.MatType]int
}

// Build 生成问题链报告。now 写入 metadata.processedAt。
func Build(records []model.QuestionRecord, now time.Time) *model.ChainReport {
	questions := make([]model.QuestionRecord, 0, len(records))
	for _, q := range records {
		if q.Question != "" {
			questions = append(questions, q)
		}
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].BeginTime < questions[j].BeginTime
	})

	report := &model.ChainReport{
		Metadata: model.ChainMetadata{TotalQuestions: len(questions), ProcessedAt: now},
		Chains:   make([]model.QuestionChain, 0),
	}
	if len(questions) == 0 {
		return report
	}

	var current *builder
	nextID := 1
	for i, q := range questions {
		if current == nil || startsNewChain(q, current, questions[i-1]) {
			if current != nil {
				report.Chains = append(report.Chains, finalize(current.chain))
			}
			current = &builder{
				chain: model.QuestionChain{
					ID:                nextID,
					StartTime:         q.BeginTime,
					EndTime:           endOf(q),
					PrimaryTopic:      topicOf(q),
					PrimaryBloomLevel: bloomOf(q),
				},
				topicCounts: map[model.MatType]int{},
			}
			nextID++
		}
		current.add(q)
	}
	report.Chains = append(report.Chains, finalize(current.chain))

	report.Metadata.TotalChains = len(report.Chains)
	report.Metadata.TimeRange = model.TimeRange{Start: questions[0].BeginTime, End: endOf(questions[0])}
	for _, q := range questions {
		report.Metadata.TimeRange.Start = math.Min(report.Metadata.TimeRange.Start, q.BeginTime)
		report.Metadata.TimeRange.End = math.Max(report.Metadata.TimeRange.End, endOf(q))
	}
	return report
}

func startsNewChain(q model.QuestionRecord, current *builder, prev model.QuestionRecord) bool {
	gap := q.BeginTime - prev.BeginTime
	if gap > BreakGap {
		return true
	}
	if topicOf(q) != current.chain.PrimaryTopic && gap > TopicGap {
		return true
	}
	return current.chain.PrimaryBloomLevel.Weight() >= model.BloomAnalyze.Weight() &&
		bloomOf(q).Weight() <= model.BloomUnderstand.Weight() &&
		gap > FallbackGap
}

func (b *builder) add(q model.QuestionRecord) {
	c := &b.chain
	c.Questions = append(c.Questions, model.ChainQuestion{
		QuestionRecord: q,
		ChainIndex:     len(c.Questions),
		RelativeTime:   q.BeginTime - c.StartTime,
	})
	c.EndTime = math.Max(c.EndTime, endOf(q))

	topic := topicOf(q)
	if _, seen := b.topicCounts[topic]; !seen {
		b.topicOrder = append(b.topicOrder, topic)
	}
	b.topicCounts[topic]++

	// 平局时取较晚出现的主题
	primary := b.topicOrder[0]
	for _, t := range b.topicOrder[1:] {
		if b.topicCounts[t] >= b.topicCounts[primary] {
			primary = t
		}
	}
	c.PrimaryTopic = primary

	highest := bloomOf(c.Questions[0].QuestionRecord)
	for _, cq := range c.Questions[1:] {
		if l := bloomOf(cq.QuestionRecord); l.Weight() > highest.Weight() {
			highest = l
		}
	}
	c.PrimaryBloomLevel = highest
}

func finalize(c model.QuestionChain) model.QuestionChain {
	c.Duration = c.EndTime - c.StartTime
	c.QuestionCount = len(c.Questions)

	var sum float64
	for _, q := range c.Questions {
		if q.Answered {
			c.Characteristics.HasAnswers = true
		}
		if q.Comment != "" && q.FeedbackType != model.FeedbackNone {
			c.Characteristics.HasFeedback = true
		}
		sum += q.Sentiment.Score
	}
	avg := sum / float64(c.QuestionCount)
	c.Characteristics.AvgSentiment = avg
	switch {
	case avg > 0.6:
		c.Characteristics.SentimentClassification = model.SentimentPositive
	case avg < 0.3:
		c.Characteristics.SentimentClassification = model.SentimentNegative
	default:
		c.Characteristics.SentimentClassification = model.SentimentNeutral
	}
	c.Characteristics.BloomProgression = progression(c.Questions)
	c.Characteristics.Intensity = float64(c.QuestionCount) / math.Max(c.Duration/60, 1)

	c.Timeline = model.ChainTimeline{
		Start:       c.StartTime,
		End:         c.EndTime,
		StartMinute: int(math.Floor(c.StartTime / 60)),
		EndMinute:   int(math.Floor(c.EndTime / 60)),
		Duration:    c.Duration,
	}
	return c
}

func progression(questions []model.ChainQuestion) model.BloomProgression {
	var p model.BloomProgression
	for i := 1; i < len(questions); i++ {
		prev, cur := bloomOf(questions[i-1].QuestionRecord).Weight(), bloomOf(questions[i].QuestionRecord).Weight()
		switch {
		case cur > prev:
			p.Ascending++
		case cur < prev:
			p.Descending++
		default:
			p.Stable++
		}
	}

	switch {
	case p.Ascending > p.Descending:
		p.Pattern = patternAscending
	case p.Descending > p.Ascending:
		p.Pattern = patternDescending
	default:
		p.Pattern = patternStable
	}
	if total := p.Ascending + p.Descending + p.Stable; total > 0 {
		p.ProgressionRatio = float64(p.Ascending) / float64(total)
	}
	return p
}

func endOf(q model.QuestionRecord) float64 {
	if q.EndTime == 0 {
		return q.BeginTime
	}
	return q.EndTime
}

func topicOf(q model.QuestionRecord) model.MatType {
	if q.Mat == "" {
		return model.MatOther
	}
	return q.Mat
}

func bloomOf(q model.QuestionRecord) model.BloomLevel {
	if q.BlmType == "" {
		return otherBloom
	}
	return q.BlmType
}
