package model

import "encoding/json"

// Role 是转写文本中的说话人编号。
type Role string

const (
	RoleTeacher  Role = "1"
	RoleStudentA Role = "2"
	RoleStudentB Role = "3"
)

// IsStudent 报告该角色是否为学生。
func (r Role) IsStudent() bool {
	return r == RoleStudentA || r == RoleStudentB
}

// Utterance 是课堂转写中的一句话，时间单位为秒。
//
// 在代码里构造时请使用 NewUtterance：直接写字面量不会设置 HasBeginTime，
// 这句话即使 BeginTime 有值也不会被当作提问的回答。
type Utterance struct {
	Role            Role    `json:"role"`
	SentenceContent string  `json:"sentenceContent"`
	BeginTime       float64 `json:"beginTime"`
	EndTime         float64 `json:"endTime"`

	// HasBeginTime 记录输入里是否出现了 beginTime 字段。
	HasBeginTime bool `json:"-"`
}

// NewUtterance 创建一条带开始时间的语句。
func NewUtterance(role Role, text string, begin, end float64) Utterance {
	return Utterance{Role: role, SentenceContent: text, BeginTime: begin, EndTime: end, HasBeginTime: true}
}

// UnmarshalJSON 解析时记录 beginTime 是否存在，缺失的开始时间不能被当作紧随其后的回答。
func (u *Utterance) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role            Role     `json:"role"`
		SentenceContent string   `json:"sentenceContent"`
		BeginTime       *float64 `json:"beginTime"`
		EndTime         float64  `json:"endTime"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = Utterance{
		Role:            raw.Role,
		SentenceContent: raw.SentenceContent,
		EndTime:         raw.EndTime,
	}
	if raw.BeginTime != nil {
		u.BeginTime = *raw.BeginTime
		u.HasBeginTime = true
	}
	return nil
}

// Transcript 是课堂转写文件的顶层结构。
type Transcript struct {
	VideoDuration float64     `json:"videoDuration"`
	FullText      []Utterance `json:"fullText"`
}
