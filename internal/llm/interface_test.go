// internal/llm/interface_test.go
package llm

import (
	"errors"
	"testing"
)

// TestGetProviderUnknown 未注册名称应返回可识别的哨兵错误
func TestGetProviderUnknown(t *testing.T) {
	_, err := GetProvider("不存在的提供者", nil)
	if err == nil {
		t.Fatal("未注册的提供者应返回错误")
	}
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("错误应可通过errors.Is匹配ErrUnknownProvider: %v", err)
	}
}
