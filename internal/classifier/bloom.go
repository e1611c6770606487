package classifier

import (
	"its4teacher-go/internal/lexicon"
	"its4teacher-go/internal/model"
	"its4teacher-go/pkg/rule"
)

// BloomClassifier 由高到低检查认知层级，先命中者胜；没有词汇线索时由四何类型推断。
type BloomClassifier struct {
	groups []lexicon.Group
}

func NewBloomClassifier(lex *lexicon.Lexicon) *BloomClassifier {
	return &BloomClassifier{groups: lex.Bloom}
}

// Classify 返回问题的布鲁姆层级。
func (c *BloomClassifier) Classify(question string, mat model.MatType) model.BloomLevel {
	for _, g := range c.groups {
		if rule.Any(question, g.Triggers) {
			return model.BloomLevel(g.Label)
		}
	}

	switch mat {
	case model.MatWhy:
		return model.BloomAnalyze
	case model.MatHow:
		return model.BloomApply
	default:
		return model.BloomRemember
	}
}
