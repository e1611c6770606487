// Package extractor 从课堂转写中挑出教师提问，并配对紧随其后的学生回答。
package extractor

import (
	"strings"

	"its4teacher-go/internal/model"
)

// AnswerWindow 是学生开口距提问结束的最大间隔（秒，开区间）。
const AnswerWindow = 10.0

var questionMarks = []string{"？", "?"}

// IsQuestion 报告一句话是否为教师提问。
func IsQuestion(u model.Utterance) bool {
	if u.Role != model.RoleTeacher {
		return false
	}
	for _, mark := range questionMarks {
		if strings.HasSuffix(u.SentenceContent, mark) {
			return true
		}
	}
	return false
}

// Extract 按转写顺序返回全部教师提问记录，分类字段留空。
func Extract(utterances []model.Utterance) []model.QuestionRecord {
	questions := make([]model.QuestionRecord, 0)
	for i, u := range utterances {
		if !IsQuestion(u) {
			continue
		}

		q := model.QuestionRecord{
			Question:  u.SentenceContent,
			BeginTime: u.BeginTime,
			EndTime:   u.EndTime,
		}
		if i+1 < len(utterances) {
			next := utterances[i+1]
			if next.Role.IsStudent() && next.HasBeginTime && next.BeginTime-u.EndTime < AnswerWindow {
				q.Answered = true
				q.Answer = next.SentenceContent
			}
		}
		questions = append(questions, q)
	}
	return questions
}
