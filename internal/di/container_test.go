// internal/di/container_test.go
package di

import (
	"testing"
)

// TestContainerRegisterAndGet 注册后按名取回同一实例
func TestContainerRegisterAndGet(t *testing.T) {
	c := GetContainer()

	type fakeService struct{ name string }
	svc := &fakeService{name: "episode"}
	c.Register("test_episode", svc)

	got, ok := c.Get("test_episode").(*fakeService)
	if !ok {
		t.Fatal("取回的服务类型不正确")
	}
	if got != svc {
		t.Error("取回的不是注册的同一实例")
	}

	if c.Get("不存在的服务") != nil {
		t.Error("未注册的服务应返回nil")
	}
}

// TestContainerSingleton 全局容器必须是同一实例
func TestContainerSingleton(t *testing.T) {
	a := GetContainer()
	b := GetContainer()
	if a != b {
		t.Error("GetContainer应返回同一全局实例")
	}
}

// TestContainerGetNames 名称列表包含已注册的服务
func TestContainerGetNames(t *testing.T) {
	c := GetContainer()
	c.Register("test_names_alpha", 1)
	c.Register("test_names_beta", 2)

	found := map[string]bool{}
	for _, name := range c.GetNames() {
		found[name] = true
	}
	if !found["test_names_alpha"] || !found["test_names_beta"] {
		t.Errorf("GetNames缺少已注册的服务: %v", c.GetNames())
	}
}
