package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"its4teacher-go/internal/model"
	"its4teacher-go/pkg/llm"
	"its4teacher-go/pkg/log"
)

const threeHeSystemPrompt = "你是一个教育专家，擅长分析教学问题的类型。请根据给定的分类标准，准确判断问题类型。"

const threeHePromptTemplate = `请分析以下教学问题属于哪种类型，只需回答"由何"、"又何"、"然何"或"无"其中之一。

分类定义：
- 由何：以情境为引导的问题，把问题与具体情境融合设计，展示相应的问题情境，帮助学生理解问题背景。
- 又何：在原有信息基础上，追问其与外部的关联延伸，如"还有什么"、"与其他事物的关系"等。
- 然何：指向问题回答的元反思，聚焦问题指向事物的深度挖掘，如探究本质、特征、属性等。
- 无：如果问题不属于以上任何一种类型，则回答"无"。

问题：%s

请直接回答类型（由何/又何/然何/无）：`

// replyLabels 是解析回复时检查标签子串的顺序。
var replyLabels = []model.ThreeHeType{
	model.ThreeHeWhence,
	model.ThreeHeWhatElse,
	model.ThreeHeThenWhat,
	model.ThreeHeNone,
}

var errBlankReply = errors.New("模型回复为空")

// ReplyCache 缓存远程分类结果，命中时不再请求接口。
type ReplyCache interface {
	Get(ctx context.Context, question string) (model.ThreeHeType, bool, error)
	Set(ctx context.Context, question string, three model.ThreeHeType) error
}

// RemoteConfig 是远程三何分类的配置。
type RemoteConfig struct {
	Generation *llm.GenerationParams
	// Interval 是相邻两次远程请求之间的固定间隔。
	Interval time.Duration
	// Cache 为 nil 时不缓存。
	Cache ReplyCache
	// Sleep 为 nil 时使用可被 ctx 取消的定时器。
	Sleep func(ctx context.Context, d time.Duration) error
}

// RemoteThreeHe 调用大模型完成三何分类，任何失败都交给后备分类器处理。
type RemoteThreeHe struct {
	cfg      RemoteConfig
	client   llm.Client
	fallback ThreeHeClassifier
	called   bool
}

// NewRemoteThreeHe 创建远程分类器。fallback 不能为空。
func NewRemoteThreeHe(cfg RemoteConfig, client llm.Client, fallback ThreeHeClassifier) *RemoteThreeHe {
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	return &RemoteThreeHe{cfg: cfg, client: client, fallback: fallback}
}

// ClassifyThreeHe 实现 ThreeHeClassifier，永远不向调用方返回错误。
func (r *RemoteThreeHe) ClassifyThreeHe(ctx context.Context, question string) model.ThreeHeType {
	if r.cfg.Cache != nil {
		three, ok, err := r.cfg.Cache.Get(ctx, question)
		if err != nil {
			log.Warnf("[RemoteThreeHe] 读取缓存失败: %v", err)
		} else if ok {
			return three
		}
	}

	three, err := r.classify(ctx, question)
	if err != nil {
		log.Warnw("远程三何分类失败，改用后备规则", "question", question, "error", err)
		return r.fallback.ClassifyThreeHe(ctx, question)
	}

	if r.cfg.Cache != nil {
		if err := r.cfg.Cache.Set(ctx, question, three); err != nil {
			log.Warnf("[RemoteThreeHe] 写入缓存失败: %v", err)
		}
	}
	return three
}

func (r *RemoteThreeHe) classify(ctx context.Context, question string) (model.ThreeHeType, error) {
	if r.called && r.cfg.Interval > 0 {
		if err := r.cfg.Sleep(ctx, r.cfg.Interval); err != nil {
			return "", err
		}
	}
	r.called = true

	reply, err := r.client.Chat(ctx, BuildThreeHeMessages(question), r.cfg.Generation)
	if err != nil {
		return "", err
	}
	three, ok := ParseThreeHeReply(reply)
	if !ok {
		return "", errBlankReply
	}
	log.Debugf("[RemoteThreeHe] 回复: %q -> %s", reply, three)
	return three, nil
}

// BuildThreeHeMessages 构造 system + user 两条消息。
func BuildThreeHeMessages(question string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: threeHeSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(threeHePromptTemplate, question)},
	}
}

// ParseThreeHeReply 按 由何→又何→然何→无 的顺序查找回复中的标签。
// 非空回复里找不到任何标签时返回"无"；空回复返回 ok=false。
func ParseThreeHeReply(reply string) (model.ThreeHeType, bool) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", false
	}
	for _, label := range replyLabels {
		if strings.Contains(reply, string(label)) {
			return label, true
		}
	}
	return model.ThreeHeNone, true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
