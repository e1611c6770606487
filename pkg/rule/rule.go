// Package rule 提供关键词与正则触发器的匹配计数，是各分类器共用的最小构件。
package rule

import (
	"regexp"
	"strings"
)

// Trigger 是一个触发条件：字面量按子串包含匹配，正则按 search 语义匹配。
type Trigger struct {
	expr string
	re   *regexp.Regexp
}

// Literal 创建一个子串触发器。
func Literal(term string) Trigger {
	return Trigger{expr: term}
}

// Pattern 编译一个正则触发器，表达式非法时 panic（词表都是静态数据）。
func Pattern(expr string) Trigger {
	return Trigger{expr: expr, re: regexp.MustCompile(expr)}
}

// String 返回触发器的原始表达式。
func (t Trigger) String() string {
	return t.expr
}

// IsPattern 报告触发器是否为正则。
func (t Trigger) IsPattern() bool {
	return t.re != nil
}

// Match 报告 text 是否命中该触发器。
func (t Trigger) Match(text string) bool {
	if t.re != nil {
		return t.re.MatchString(text)
	}
	return strings.Contains(text, t.expr)
}

// Set 是一组有序触发器。
type Set []Trigger

// Literals 由字面量列表构造 Set。
func Literals(terms ...string) Set {
	set := make(Set, 0, len(terms))
	for _, term := range terms {
		set = append(set, Literal(term))
	}
	return set
}

// Patterns 由正则表达式列表构造 Set。
func Patterns(exprs ...string) Set {
	set := make(Set, 0, len(exprs))
	for _, expr := range exprs {
		set = append(set, Pattern(expr))
	}
	return set
}

// CountMatches 统计 text 命中了多少个不同的触发器。
// 同一触发器出现多次只计一次。
func CountMatches(text string, triggers Set) int {
	count := 0
	for _, t := range triggers {
		if t.Match(text) {
			count++
		}
	}
	return count
}

// Any 报告 text 是否命中至少一个触发器。
func Any(text string, triggers Set) bool {
	for _, t := range triggers {
		if t.Match(text) {
			return true
		}
	}
	return false
}
