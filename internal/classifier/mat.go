package classifier

import (
	"its4teacher-go/internal/lexicon"
	"its4teacher-go/internal/model"
	"its4teacher-go/pkg/rule"
)

// MatClassifier 按"是何→如何→为何→若何"顺序取第一个命中的类型。
type MatClassifier struct {
	groups   []lexicon.Group
	fallback model.MatType
}

func NewMatClassifier(lex *lexicon.Lexicon) *MatClassifier {
	return &MatClassifier{groups: lex.Mat, fallback: model.MatType(lex.MatDefault)}
}

// Classify 返回问题的四何类型，无命中时为默认类型。
func (c *MatClassifier) Classify(question string) model.MatType {
	for _, g := range c.groups {
		if rule.Any(question, g.Triggers) {
			return model.MatType(g.Label)
		}
	}
	return c.fallback
}
