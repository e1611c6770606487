package model

// ThreeHeType 是"三何"追问类型。
type ThreeHeType string

const (
	ThreeHeWhence   ThreeHeType = "由何"
	ThreeHeWhatElse ThreeHeType = "又何"
	ThreeHeThenWhat ThreeHeType = "然何"
	// ThreeHeNone 只会由远程分类返回，这类问题不进入输出。
	ThreeHeNone ThreeHeType = "无"
)

// ThreeHeTypes 按评估顺序列出三种类型。
var ThreeHeTypes = []ThreeHeType{ThreeHeWhence, ThreeHeWhatElse, ThreeHeThenWhat}

// ThreeHeRecord 是三何分类阶段的输出记录。
type ThreeHeRecord struct {
	Question  string      `json:"question"`
	Mat       MatType     `json:"mat"`
	Three     ThreeHeType `json:"three"`
	BeginTime float64     `json:"beginTime"`
}

// ThreeHeStatistics 是三何分类阶段的统计。
type ThreeHeStatistics struct {
	Mat     map[MatType]int     `json:"mat"`
	ThreeHe map[ThreeHeType]int `json:"three_he"`
	Total   int                 `json:"total"`
}

// NewThreeHeStatistics 返回预置键的统计；includeNone 为 true 时额外预置"无"。
func NewThreeHeStatistics(includeNone bool) ThreeHeStatistics {
	s := ThreeHeStatistics{
		Mat:     make(map[MatType]int, len(MatTypes)),
		ThreeHe: make(map[ThreeHeType]int, len(ThreeHeTypes)+1),
	}
	for _, m := range MatTypes {
		s.Mat[m] = 0
	}
	for _, t := range ThreeHeTypes {
		s.ThreeHe[t] = 0
	}
	if includeNone {
		s.ThreeHe[ThreeHeNone] = 0
	}
	return s
}

// Clone 深拷贝统计，写检查点时使用。
func (s ThreeHeStatistics) Clone() ThreeHeStatistics {
	c := ThreeHeStatistics{
		Mat:     make(map[MatType]int, len(s.Mat)),
		ThreeHe: make(map[ThreeHeType]int, len(s.ThreeHe)),
		Total:   s.Total,
	}
	for k, v := range s.Mat {
		c.Mat[k] = v
	}
	for k, v := range s.ThreeHe {
		c.ThreeHe[k] = v
	}
	return c
}

// ThreeHeReport 是三何分类阶段写出的文件结构，检查点文件结构相同。
type ThreeHeReport struct {
	Questions  []ThreeHeRecord   `json:"questions"`
	Statistics ThreeHeStatistics `json:"statistics"`
}
