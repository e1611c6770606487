package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"its4teacher-go/internal/model"
)

// CheckpointSink 接收处理中途的部分结果。
type CheckpointSink interface {
	Checkpoint(ctx context.Context, partial *model.ThreeHeReport, processed, total int) error
}

// ArtifactMirror 把最终产物额外保存到别处（例如对象存储）。
type ArtifactMirror interface {
	Put(ctx context.Context, name string, data []byte) error
}

// FileCheckpointSink 把检查点写到最终输出旁边的 *_temp.json 文件。
type FileCheckpointSink struct {
	fs   afero.Fs
	path string
}

// NewFileCheckpointSink 根据最终输出路径推导检查点路径。
func NewFileCheckpointSink(fs afero.Fs, outputPath string) *FileCheckpointSink {
	return &FileCheckpointSink{fs: fs, path: CheckpointPath(outputPath)}
}

// CheckpointPath 返回 outputPath 对应的检查点文件路径。
func CheckpointPath(outputPath string) string {
	if strings.HasSuffix(outputPath, ".json") {
		return strings.TrimSuffix(outputPath, ".json") + "_temp.json"
	}
	return outputPath + "_temp.json"
}

// Path 返回检查点文件路径。
func (s *FileCheckpointSink) Path() string {
	return s.path
}

// Checkpoint 覆盖写入当前的部分结果。
func (s *FileCheckpointSink) Checkpoint(_ context.Context, partial *model.ThreeHeReport, _, _ int) error {
	data, err := encodeJSON(partial)
	if err != nil {
		return fmt.Errorf("编码检查点失败: %w", err)
	}
	return writeFile(s.fs, s.path, data)
}
