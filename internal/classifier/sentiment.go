// Package classifier 实现问题的情感打分、四何、布鲁姆与三何分类。
package classifier

import (
	"math"

	"its4teacher-go/internal/lexicon"
	"its4teacher-go/internal/model"
	"its4teacher-go/pkg/rule"
)

const (
	sentimentBase         = 0.4
	sentimentPositiveStep = 0.15
	sentimentNegativeStep = 0.15
	sentimentNeutralStep  = 0.02

	positiveThreshold = 0.6
	negativeThreshold = 0.3
)

// SentimentScorer 基于关键词计数给问题打情感分。
type SentimentScorer struct {
	terms lexicon.SentimentTerms
}

// NewSentimentScorer 创建一个使用给定词表的 SentimentScorer。
func NewSentimentScorer(lex *lexicon.Lexicon) *SentimentScorer {
	return &SentimentScorer{terms: lex.Sentiment}
}

// Score 计算 text 的情感得分与分类。
func (s *SentimentScorer) Score(text string) model.Sentiment {
	score := sentimentBase
	score += float64(rule.CountMatches(text, s.terms.Positive)) * sentimentPositiveStep
	score -= float64(rule.CountMatches(text, s.terms.Negative)) * sentimentNegativeStep
	score += float64(rule.CountMatches(text, s.terms.Neutral)) * sentimentNeutralStep

	score = math.Max(0, math.Min(1, score))
	// 消除浮点累加误差，避免 0.6/0.3 这样的边界值被推到阈值另一侧
	score = math.Round(score*1e6) / 1e6

	return model.Sentiment{Score: score, Classification: ClassifySentiment(score)}
}

// ClassifySentiment 按阈值把得分映射为情感分类，两端阈值均为闭区间。
func ClassifySentiment(score float64) model.SentimentClass {
	switch {
	case score >= positiveThreshold:
		return model.SentimentPositive
	case score <= negativeThreshold:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}
