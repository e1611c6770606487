package model

// MatType 是"四何"问题类型。
type MatType string

const (
	MatWhatIs MatType = "是何"
	MatHow    MatType = "如何"
	MatWhy    MatType = "为何"
	MatWhatIf MatType = "若何"
	// MatOther 用于输入里缺失或无法识别的 mat 字段。
	MatOther MatType = "其他"
)

// MatTypes 按固定顺序列出四种问题类型。
var MatTypes = []MatType{MatWhatIs, MatHow, MatWhy, MatWhatIf}

// IsKnown 报告是否为四何之一。
func (m MatType) IsKnown() bool {
	for _, t := range MatTypes {
		if m == t {
			return true
		}
	}
	return false
}

// BloomLevel 是布鲁姆认知层级。
type BloomLevel string

const (
	BloomRemember   BloomLevel = "记忆"
	BloomUnderstand BloomLevel = "理解"
	BloomApply      BloomLevel = "应用"
	BloomAnalyze    BloomLevel = "分析"
	BloomEvaluate   BloomLevel = "评价"
	BloomCreate     BloomLevel = "创造"
)

// BloomLevels 由低到高列出六个层级。
var BloomLevels = []BloomLevel{BloomRemember, BloomUnderstand, BloomApply, BloomAnalyze, BloomEvaluate, BloomCreate}

// Weight 返回层级权重（记忆=1 … 创造=6），未知层级为 0。
func (b BloomLevel) Weight() int {
	for i, l := range BloomLevels {
		if b == l {
			return i + 1
		}
	}
	return 0
}

// SentimentClass 是情感分类。
type SentimentClass string

const (
	SentimentPositive SentimentClass = "积极"
	SentimentNeutral  SentimentClass = "中性"
	SentimentNegative SentimentClass = "消极"
)

// SentimentClasses 按输出顺序列出三种情感分类。
var SentimentClasses = []SentimentClass{SentimentPositive, SentimentNeutral, SentimentNegative}

// FeedbackNone 是当前唯一的反馈类型取值。
const FeedbackNone = "无反馈"

// Sentiment 是问题的情感得分与分类。
type Sentiment struct {
	Score          float64        `json:"score"`
	Classification SentimentClass `json:"classification"`
}

// QuestionRecord 是从一句教师提问派生出的记录，也是情感分析阶段输出数组的元素。
type QuestionRecord struct {
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	Comment      string     `json:"comment"`
	BlmType      BloomLevel `json:"blmType"`
	Mat          MatType    `json:"mat"`
	FeedbackType string     `json:"feedbackType"`
	Answered     bool       `json:"answered"`
	BeginTime    float64    `json:"beginTime"`
	EndTime      float64    `json:"endTime"`
	Sentiment    Sentiment  `json:"question_sentiment"`
}

// SentimentStatistics 是情感分析阶段的分类统计。
type SentimentStatistics struct {
	Mat       map[MatType]int        `json:"mat"`
	Bloom     map[BloomLevel]int     `json:"bloom"`
	Sentiment map[SentimentClass]int `json:"sentiment"`
	Answered  int                    `json:"answered"`
	Total     int                    `json:"total"`
}

// NewSentimentStatistics 返回预置了情感分类键的统计。
func NewSentimentStatistics() SentimentStatistics {
	s := SentimentStatistics{
		Mat:       map[MatType]int{},
		Bloom:     map[BloomLevel]int{},
		Sentiment: map[SentimentClass]int{},
	}
	for _, c := range SentimentClasses {
		s.Sentiment[c] = 0
	}
	return s
}

// Add 把一条记录计入统计。
func (s *SentimentStatistics) Add(q QuestionRecord) {
	s.Mat[q.Mat]++
	s.Bloom[q.BlmType]++
	s.Sentiment[q.Sentiment.Classification]++
	if q.Answered {
		s.Answered++
	}
	s.Total++
}
