package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"sorlens/internal/model"
)

// 文件级错误分类；除 ErrNoUsableSources 外都只会让单个文件被跳过
var (
	ErrNoAssessmentRows     = eris.New("no assessment rows found")
	ErrUnresolvedColumnRole = eris.New("unresolved column role")
	ErrFileRead             = eris.New("file read failure")
	ErrNoUsableSources      = eris.New("no usable sources")
)

// BatchError 整批没有可用文件时返回，附带全部跳过原因
type BatchError struct {
	Reasons []model.SkipReason
}

func (e *BatchError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrNoUsableSources.Error()
	}
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = r.String()
	}
	return fmt.Sprintf("%s: %s", ErrNoUsableSources.Error(), strings.Join(parts, "; "))
}

func (e *BatchError) Unwrap() error { return ErrNoUsableSources }

// Reasons 从错误中取出跳过原因（非 BatchError 返回 nil）
func Reasons(err error) []model.SkipReason {
	var be *BatchError
	if errors.As(err, &be) {
		return be.Reasons
	}
	return nil
}
