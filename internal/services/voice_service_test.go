// internal/services/voice_service_test.go
package services

import (
	"reflect"
	"testing"

	"github.com/Corphon/WonderBotsMCP/internal/models"
)

func guideCharacters() map[string]models.CharacterProfile {
	return map[string]models.CharacterProfile{
		"nova": {ID: "nova", Name: "Nova", Role: models.RoleGuide},
		"bolt": {ID: "bolt", Name: "Bolt", Role: models.RoleGuide},
		"pip":  {ID: "pip", Name: "Pip", Role: models.RoleGuide},
	}
}

// TestAssignVoicesGuides 三位向导拿到各自的专属音色
func TestAssignVoicesGuides(t *testing.T) {
	vs := NewVoiceService()
	voiceMap := vs.AssignVoices(guideCharacters())

	for _, guide := range []string{"nova", "bolt", "pip"} {
		if voiceMap[guide] == "" {
			t.Errorf("向导%q未分配音色", guide)
		}
	}
	if voiceMap["nova"] == voiceMap["bolt"] || voiceMap["bolt"] == voiceMap["pip"] {
		t.Error("向导音色不应重复")
	}
}

// TestAssignVoicesStable 同一角色表多次分配必须得到同一映射
func TestAssignVoicesStable(t *testing.T) {
	vs := NewVoiceService()
	characters := guideCharacters()
	characters["dr_luna"] = models.CharacterProfile{ID: "dr_luna", Role: models.RoleExpert, Gender: "female"}
	characters["prof_max"] = models.CharacterProfile{ID: "prof_max", Role: models.RoleExpert, Gender: "male"}

	first := vs.AssignVoices(characters)
	for i := 0; i < 20; i++ {
		if got := vs.AssignVoices(characters); !reflect.DeepEqual(got, first) {
			t.Fatalf("音色分配不稳定: 第一次%v, 后续%v", first, got)
		}
	}
}

// TestAssignVoicesPerPoolCounters 各性别池的轮转计数器互相独立
func TestAssignVoicesPerPoolCounters(t *testing.T) {
	vs := NewVoiceService()

	// 先出现两位男性专家，随后的第一位女性专家仍应拿到女声池的第一个音色
	characters := map[string]models.CharacterProfile{
		"a_expert": {ID: "a_expert", Role: models.RoleExpert, Gender: "male"},
		"b_expert": {ID: "b_expert", Role: models.RoleExpert, Gender: "male"},
		"c_expert": {ID: "c_expert", Role: models.RoleExpert, Gender: "female"},
	}
	voiceMap := vs.AssignVoices(characters)

	onlyFemale := vs.AssignVoices(map[string]models.CharacterProfile{
		"c_expert": {ID: "c_expert", Role: models.RoleExpert, Gender: "female"},
	})

	if voiceMap["c_expert"] != onlyFemale["c_expert"] {
		t.Errorf("女声池计数器被男性专家影响: %q vs %q",
			voiceMap["c_expert"], onlyFemale["c_expert"])
	}
	if voiceMap["a_expert"] == voiceMap["b_expert"] {
		t.Error("同池相邻专家不应拿到同一音色")
	}
}

// TestAssignVoicesFallbackPool 未声明性别的角色走备用池
func TestAssignVoicesFallbackPool(t *testing.T) {
	vs := NewVoiceService()
	voiceMap := vs.AssignVoices(map[string]models.CharacterProfile{
		"mystery": {ID: "mystery", Role: models.RoleExpert},
	})

	if voiceMap["mystery"] != vs.DefaultVoice() {
		t.Errorf("备用池首位角色应拿到兜底音色%q，实际%q",
			vs.DefaultVoice(), voiceMap["mystery"])
	}
}

// TestAssignVoicesPoolWraparound 专家数量超过池容量时轮转复用
func TestAssignVoicesPoolWraparound(t *testing.T) {
	vs := NewVoiceService()
	characters := map[string]models.CharacterProfile{
		"e1": {ID: "e1", Role: models.RoleExpert, Gender: "female"},
		"e2": {ID: "e2", Role: models.RoleExpert, Gender: "female"},
		"e3": {ID: "e3", Role: models.RoleExpert, Gender: "female"},
		"e4": {ID: "e4", Role: models.RoleExpert, Gender: "female"},
	}
	voiceMap := vs.AssignVoices(characters)

	// 排序后第4位回绕到池首
	if voiceMap["e4"] != voiceMap["e1"] {
		t.Errorf("池耗尽后应回绕复用: e1=%q e4=%q", voiceMap["e1"], voiceMap["e4"])
	}
}
