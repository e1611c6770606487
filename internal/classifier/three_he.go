package classifier

import (
	"context"

	"its4teacher-go/internal/lexicon"
	"its4teacher-go/internal/model"
	"its4teacher-go/pkg/rule"
)

// ThreeHeClassifier 是三何分类能力，规则分类和远程分类都实现它。
type ThreeHeClassifier interface {
	ClassifyThreeHe(ctx context.Context, question string) model.ThreeHeType
}

// RuleThreeHe 对三组模式分别计数并取最高者。
// 与四何、布鲁姆的"先命中者胜"不同，这里是计数投票，平局按 由何>又何>然何 的顺序决定。
type RuleThreeHe struct {
	groups   []lexicon.Group
	cues     []lexicon.Cue
	fallback model.ThreeHeType
}

func NewRuleThreeHe(lex *lexicon.Lexicon) *RuleThreeHe {
	return &RuleThreeHe{
		groups:   lex.ThreeHe,
		cues:     lex.ThreeHeCues,
		fallback: model.ThreeHeType(lex.ThreeHeDefault),
	}
}

// Classify 返回问题的三何类型。
func (c *RuleThreeHe) Classify(question string) model.ThreeHeType {
	best, bestScore := "", 0
	for _, g := range c.groups {
		// 严格大于：平局时保留先出现的组
		if score := rule.CountMatches(question, g.Triggers); score > bestScore {
			best, bestScore = g.Label, score
		}
	}
	if bestScore > 0 {
		return model.ThreeHeType(best)
	}

	for _, cue := range c.cues {
		if cue.Matches(question) {
			return model.ThreeHeType(cue.Label)
		}
	}
	return c.fallback
}

// ClassifyThreeHe 实现 ThreeHeClassifier。
func (c *RuleThreeHe) ClassifyThreeHe(_ context.Context, question string) model.ThreeHeType {
	return c.Classify(question)
}

// FastThreeHe 只判断关键词是否出现，不使用正则。
type FastThreeHe struct {
	groups   []lexicon.Group
	fallback model.ThreeHeType
}

func NewFastThreeHe(lex *lexicon.Lexicon) *FastThreeHe {
	return &FastThreeHe{groups: lex.FastThreeHe, fallback: model.ThreeHeType(lex.FastThreeHeDefault)}
}

// Classify 返回第一个出现关键词的组，否则为默认类型。
func (c *FastThreeHe) Classify(question string) model.ThreeHeType {
	for _, g := range c.groups {
		if rule.Any(question, g.Triggers) {
			return model.ThreeHeType(g.Label)
		}
	}
	return c.fallback
}

// ClassifyThreeHe 实现 ThreeHeClassifier。
func (c *FastThreeHe) ClassifyThreeHe(_ context.Context, question string) model.ThreeHeType {
	return c.Classify(question)
}
