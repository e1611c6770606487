package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrInvalidInput 表示输入文件不可读或不是合法 JSON，批处理必须立即中止。
var ErrInvalidInput = errors.New("invalid input")

// readJSON 整体读入文件并解析到 v。
func readJSON(fs afero.Fs, path string, v interface{}) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("%w: 读取 %s 失败: %v", ErrInvalidInput, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: 解析 %s 失败: %v", ErrInvalidInput, path, err)
	}
	return nil
}

// encodeJSON 以两空格缩进编码，不转义 HTML 字符，中文原样输出。
func encodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFile 写入文件，必要时创建父目录。
func writeFile(fs afero.Fs, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录 %s 失败: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}
