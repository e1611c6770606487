package model

import "time"

// ChainQuestion 是问题链中的一个问题，附带在链中的位置信息。
type ChainQuestion struct {
	QuestionRecord
	ChainIndex   int     `json:"chainIndex"`
	RelativeTime float64 `json:"relativeTime"`
}

// BloomProgression 描述链内相邻问题认知层级的升降。
type BloomProgression struct {
	Pattern          string  `json:"pattern"`
	Ascending        int     `json:"ascending"`
	Descending       int     `json:"descending"`
	Stable           int     `json:"stable"`
	ProgressionRatio float64 `json:"progressionRatio"`
}

// ChainCharacteristics 是问题链的汇总特征。
type ChainCharacteristics struct {
	HasAnswers              bool             `json:"hasAnswers"`
	HasFeedback             bool             `json:"hasFeedback"`
	AvgSentiment            float64          `json:"avgSentiment"`
	SentimentClassification SentimentClass   `json:"sentimentClassification"`
	BloomProgression        BloomProgression `json:"bloomProgression"`
	Intensity               float64          `json:"intensity"`
}

// ChainTimeline 是问题链的时间范围，分钟向下取整。
type ChainTimeline struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	StartMinute int     `json:"startMinute"`
	EndMinute   int     `json:"endMinute"`
	Duration    float64 `json:"duration"`
}

// QuestionChain 是时间上连续、主题相近的一组提问。
type QuestionChain struct {
	ID                int                  `json:"id"`
	Questions         []ChainQuestion      `json:"questions"`
	StartTime         float64              `json:"startTime"`
	EndTime           float64              `json:"endTime"`
	PrimaryTopic      MatType              `json:"primaryTopic"`
	PrimaryBloomLevel BloomLevel           `json:"primaryBloomLevel"`
	Duration          float64              `json:"duration"`
	QuestionCount     int                  `json:"questionCount"`
	Characteristics   ChainCharacteristics `json:"characteristics"`
	Timeline          ChainTimeline        `json:"timeline"`
}

// TimeRange 是闭区间时间范围（秒）。
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ChainMetadata 是问题链报告的元信息。
type ChainMetadata struct {
	TotalQuestions int       `json:"totalQuestions"`
	TotalChains    int       `json:"totalChains"`
	TimeRange      TimeRange `json:"timeRange"`
	ProcessedAt    time.Time `json:"processedAt"`
}

// ChainReport 是问题链阶段写出的文件结构。
type ChainReport struct {
	Metadata ChainMetadata   `json:"metadata"`
	Chains   []QuestionChain `json:"chains"`
}
