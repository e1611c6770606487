// Package bootstrap 根据配置组装分类器和可选的外部依赖，供两个入口程序共用。
package bootstrap

import (
	"context"
	"io"

	"its4teacher-go/internal/classifier"
	"its4teacher-go/internal/config"
	"its4teacher-go/internal/lexicon"
	"its4teacher-go/internal/pipeline"
	"its4teacher-go/pkg/cache"
	"its4teacher-go/pkg/llm"
	"its4teacher-go/pkg/log"
	"its4teacher-go/pkg/storage"
)

// ThreeHe 是组装好的三何分类器。
type ThreeHe struct {
	Classifier classifier.ThreeHeClassifier
	// Remote 表示 Classifier 会调用大模型接口。
	Remote bool
	closers []io.Closer
}

// Close 释放分类器持有的连接。
func (t *ThreeHe) Close() error {
	for _, c := range t.closers {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}

// NewThreeHe 按配置选择三何分类器：
//   - 允许远程分类且配置了 API 密钥：远程分类器，以关键词分类为后备；
//   - 允许远程分类但没有密钥：关键词分类，与远程失败时的后备结果一致；
//   - 关闭远程分类：完整的规则计数分类。
//
// Redis 缓存连接失败只记警告。
func NewThreeHe(cfg config.Config, lex *lexicon.Lexicon) *ThreeHe {
	if !cfg.Analyzer.UseRemote {
		return &ThreeHe{Classifier: classifier.NewRuleThreeHe(lex)}
	}
	if !cfg.RemoteEnabled() {
		log.Warnf("警告：未设置DeepSeek API密钥，将使用基于规则的分类方法")
		log.Warnf("如需使用DeepSeek API，请设置环境变量: export DEEPSEEK_API_KEY='your-actual-key'")
		return &ThreeHe{Classifier: classifier.NewFastThreeHe(lex)}
	}

	t := &ThreeHe{Remote: true}
	remoteCfg := classifier.RemoteConfig{
		Generation: llm.FromConfig(cfg.LLM.Generation),
		Interval:   cfg.Analyzer.RequestInterval,
	}
	if cfg.Cache.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			log.Warnf("Redis 缓存不可用，将不缓存远程分类结果: %v", err)
		} else {
			remoteCfg.Cache = cache.NewThreeHeCache(rdb, cfg.Cache.TTL)
			t.closers = append(t.closers, rdb)
		}
	}

	t.Classifier = classifier.NewRemoteThreeHe(remoteCfg, llm.NewClient(cfg.LLM), classifier.NewFastThreeHe(lex))
	log.Infof("使用DeepSeek API进行分类, model: %s", cfg.LLM.Model)
	return t
}

// NewMirror 在启用 MinIO 时返回产物镜像，初始化失败只记警告并返回 nil。
func NewMirror(ctx context.Context, cfg config.MinIOConfig) pipeline.ArtifactMirror {
	if !cfg.Enabled {
		return nil
	}
	store, err := storage.NewArtifactStore(ctx, cfg)
	if err != nil {
		log.Warnf("MinIO 不可用，产物只保存在本地: %v", err)
		return nil
	}
	return store
}
