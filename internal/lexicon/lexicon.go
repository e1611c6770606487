// Package lexicon 定义各分类器使用的关键词表和模式组。
//
// 所有表都是有序数据：四何与布鲁姆按组顺序"先命中者胜"，三何按组计数取最大、
// 平局按组顺序。分类器只读取这些表，替换 Lexicon 即可改变分类行为。
package lexicon

import "its4teacher-go/pkg/rule"

// Group 把一组触发器绑定到一个分类标签。
type Group struct {
	Label    string
	Triggers rule.Set
}

// Cue 要求 All 中的每个 Set 都至少命中一个触发器。
type Cue struct {
	Label string
	All   []rule.Set
}

// Matches 报告 text 是否满足该线索。
func (c Cue) Matches(text string) bool {
	for _, set := range c.All {
		if !rule.Any(text, set) {
			return false
		}
	}
	return len(c.All) > 0
}

// SentimentTerms 是情感打分用的三类词表。
type SentimentTerms struct {
	Positive rule.Set
	Negative rule.Set
	// Neutral 是疑问语气词，提问本身倾向中性。
	Neutral rule.Set
}

// Lexicon 汇总全部分类规则表。
type Lexicon struct {
	Sentiment SentimentTerms

	Mat        []Group
	MatDefault string

	Bloom []Group

	ThreeHe []Group
	// ThreeHeCues 在三组计数全为 0 时按顺序判断。
	ThreeHeCues    []Cue
	ThreeHeDefault string

	// FastThreeHe 只做关键词包含判断，作为远程分类的后备。
	FastThreeHe        []Group
	FastThreeHeDefault string
}

// Default 返回内置的规则表。每次调用都构造新的实例。
func Default() *Lexicon {
	return &Lexicon{
		Sentiment: SentimentTerms{
			Positive: rule.Literals(
				"好", "很好", "非常好", "优秀", "棒", "正确", "对", "是的",
				"不错", "厉害", "聪明", "太棒了", "很棒", "继续", "加油",
			),
			Negative: rule.Literals(
				"错", "不对", "不是", "错误", "不行", "不好", "差", "不会",
				"不能", "不要", "别", "没有", "不太", "不够",
			),
			Neutral: rule.Literals(
				"什么", "怎么", "如何", "为什么", "哪个", "哪些", "多少",
				"是否", "能否", "可以", "有没有", "呢", "吗", "么",
			),
		},

		Mat: []Group{
			{Label: "是何", Triggers: rule.Patterns(`(是什么|叫什么|什么是|哪.*?是|定义)`)},
			{Label: "如何", Triggers: rule.Patterns(`(如何|怎么|怎样|怎样才能)`)},
			{Label: "为何", Triggers: rule.Patterns(`(为什么|为何|原因|为啥)`)},
			{Label: "若何", Triggers: rule.Patterns(`(假如|如果|若|假设|设)`)},
		},
		MatDefault: "是何",

		Bloom: []Group{
			{Label: "创造", Triggers: rule.Patterns(`(设计|创作|改进|创新|构建|建立新)`)},
			{Label: "评价", Triggers: rule.Patterns(`(评价|判断|评估|比较.*?优劣|哪个更好)`)},
			{Label: "分析", Triggers: rule.Patterns(`(分析|区分|推导|证明|为什么)`)},
			{Label: "应用", Triggers: rule.Patterns(`(应用|运用|计算|解决|如何|怎么)`)},
			{Label: "理解", Triggers: rule.Patterns(`(解释|说明|概括|理解|意思|含义)`)},
			{Label: "记忆", Triggers: rule.Patterns(`(是什么|叫什么|定义|列举|回忆|有哪些)`)},
		},

		ThreeHe: []Group{
			{Label: "由何", Triggers: rule.Patterns(
				`从.*?来看`, `基于`, `根据`, `依据`, `在.*?背景下`,
				`在.*?情况下`, `从.*?角度`, `结合.*?来`, `联系.*?来`, `通过.*?来`,
			)},
			{Label: "又何", Triggers: rule.Patterns(
				`还有`, `除了.*?还`, `另外`, `其他`, `除此之外`, `.*?与.*?关系`,
				`.*?如何影响`, `.*?和.*?有什么`, `相比`, `对比`, `区别`, `联系`, `关联`,
			)},
			{Label: "然何", Triggers: rule.Patterns(
				`那么`, `接下来`, `然后`, `进一步`, `深入`, `本质`, `特征`,
				`属性`, `具体`, `详细`, `为什么.*?这样`, `意味着什么`, `说明了什么`,
			)},
		},
		ThreeHeCues: []Cue{
			// 基础定义问题
			{Label: "由何", All: []rule.Set{rule.Literals("什么"), rule.Literals("是", "叫")}},
			// 方法探究问题
			{Label: "然何", All: []rule.Set{rule.Literals("怎么", "如何")}},
			// 原因探究问题
			{Label: "然何", All: []rule.Set{rule.Literals("为什么", "为何")}},
		},
		ThreeHeDefault: "由何",

		FastThreeHe: []Group{
			{Label: "又何", Triggers: rule.Literals("还有", "除了", "其他", "另外", "相比", "区别", "关系")},
			{Label: "然何", Triggers: rule.Literals("那么", "接下来", "然后", "本质", "特征", "属性", "为什么")},
		},
		FastThreeHeDefault: "由何",
	}
}
