package importer

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Source 一个待分析的表格来源
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource 本地文件
func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesSource 内存中的文件内容（上传文件）
func BytesSource(name string, data []byte) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}
