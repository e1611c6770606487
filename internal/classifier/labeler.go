package classifier

import (
	"its4teacher-go/internal/lexicon"
	"its4teacher-go/internal/model"
)

// Labeler 为一条提问记录补齐情感、四何、布鲁姆和反馈标签。
type Labeler struct {
	sentiment *SentimentScorer
	mat       *MatClassifier
	bloom     *BloomClassifier
}

// NewLabeler 用同一份词表创建全部本地分类器。
func NewLabeler(lex *lexicon.Lexicon) *Labeler {
	return &Labeler{
		sentiment: NewSentimentScorer(lex),
		mat:       NewMatClassifier(lex),
		bloom:     NewBloomClassifier(lex),
	}
}

// Label 就地填写 q 的分类字段。布鲁姆层级依赖已算出的四何类型。
func (l *Labeler) Label(q *model.QuestionRecord) {
	q.Mat = l.mat.Classify(q.Question)
	q.BlmType = l.bloom.Classify(q.Question, q.Mat)
	q.FeedbackType = model.FeedbackNone
	q.Sentiment = l.sentiment.Score(q.Question)
}
