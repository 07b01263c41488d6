// internal/services/llm_service_test.go
package services

import (
	"context"
	"encoding/json"
	"testing"

	apperrors "github.com/Corphon/WonderBotsMCP/internal/errors"
)

// TestCleanJSONStringFences 剥离markdown围栏
func TestCleanJSONStringFences(t *testing.T) {
	input := "```json\n{\"key\": \"value\"}\n```"
	got := cleanJSONString(input)

	var parsed map[string]string
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("清理后仍无法解析: %v (清理结果%q)", err, got)
	}
	if parsed["key"] != "value" {
		t.Errorf("解析结果错误: %v", parsed)
	}
}

// TestCleanJSONStringLeadingProse 丢弃JSON载荷之前的解释性文字
func TestCleanJSONStringLeadingProse(t *testing.T) {
	input := "Sure! Here is the JSON you asked for:\n{\"answer\": 42}\nLet me know if you need anything else."
	got := cleanJSONString(input)

	var parsed map[string]int
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("清理后仍无法解析: %v (清理结果%q)", err, got)
	}
	if parsed["answer"] != 42 {
		t.Errorf("解析结果错误: %v", parsed)
	}
}

// TestCleanJSONStringArray 数组载荷同样按括号配对提取
func TestCleanJSONStringArray(t *testing.T) {
	input := "result: [1, 2, 3] -- done"
	got := cleanJSONString(input)

	var parsed []int
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("清理后仍无法解析: %v (清理结果%q)", err, got)
	}
	if len(parsed) != 3 {
		t.Errorf("解析结果错误: %v", parsed)
	}
}

// TestCleanJSONStringNestedBraces 字符串值里的括号不影响配对
func TestCleanJSONStringNestedBraces(t *testing.T) {
	input := `{"text": "curly } inside a string", "nested": {"a": 1}} trailing garbage`
	got := cleanJSONString(input)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("清理后仍无法解析: %v (清理结果%q)", err, got)
	}
	if parsed["text"] != "curly } inside a string" {
		t.Errorf("字符串值被破坏: %v", parsed["text"])
	}
}

// TestCreateStructuredCompletionNotReady 未配置的服务直接拒绝调用
func TestCreateStructuredCompletionNotReady(t *testing.T) {
	svc := NewEmptyLLMService()

	var out map[string]interface{}
	err := svc.CreateStructuredCompletion(context.Background(), "prompt", "", 0.7, 100, &out)
	if err == nil {
		t.Fatal("未就绪的服务应返回错误")
	}
	if apperrors.IsSchemaError(err) {
		t.Error("未就绪不是SchemaError")
	}
}

// TestCreateStructuredCompletionSchemaError 不可解析的输出包装为SchemaError
func TestCreateStructuredCompletionSchemaError(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"definitely not json"}}
	svc := NewLLMServiceWithProvider(provider, "test-model")

	var out map[string]interface{}
	err := svc.CreateStructuredCompletion(context.Background(), "prompt", "system", 0.7, 100, &out)
	if !apperrors.IsSchemaError(err) {
		t.Fatalf("期望SchemaError，实际%v", err)
	}
}
