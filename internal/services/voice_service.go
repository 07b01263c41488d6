// internal/services/voice_service.go
package services

import (
	"sort"

	"github.com/Corphon/WonderBotsMCP/internal/models"
)

// 三位向导的专属音色，跨所有剧集保持一致（品牌一致性）
var defaultGuideVoices = map[string]string{
	// Nova — 自信温暖的领队
	"nova": "EXAVITQu4vr4xnSDxMaL", // "Bella"
	// Bolt — 精力充沛的搞笑担当
	"bolt": "TxGEqnHWrfWFTfGW9XjX", // "Josh"
	// Pip — 轻声细语的安静天才
	"pip": "MF3mGyEYCl7XYWbV9V6O", // "Elli"
}

// 专家音色池按声明的性别分池，未声明性别走混合备用池
var (
	defaultFemaleVoicePool = []string{
		"21m00Tcm4TlvDq8ikWAM", // "Rachel"
		"jBpfuIE2acCO8z3wKNLl", // "Gigi"
		"ThT5KcBeYPX3keUQqHPh", // "Dorothy"
	}
	defaultMaleVoicePool = []string{
		"pNInz6obpgDQGcFmaJgB", // "Adam"
		"yoZ06aMxZJJ28mfd3POQ", // "Sam"
		"VR6AewLTigWG4xSOukaG", // "Arnold"
	}
	defaultFallbackVoicePool = []string{
		"pNInz6obpgDQGcFmaJgB",
		"21m00Tcm4TlvDq8ikWAM",
		"yoZ06aMxZJJ28mfd3POQ",
		"jBpfuIE2acCO8z3wKNLl",
		"VR6AewLTigWG4xSOukaG",
		"ThT5KcBeYPX3keUQqHPh",
	}
)

// VoiceService 角色到合成音色的确定性分配
// 音色池是不可变的有序列表，轮转计数器在一次分配内显式传递，
// 不依赖共享可变状态，因此AssignVoices是Characters的纯函数。
type VoiceService struct {
	guideVoices  map[string]string
	femalePool   []string
	malePool     []string
	fallbackPool []string
}

// NewVoiceService 用内置音色表创建音色分配服务
func NewVoiceService() *VoiceService {
	return &VoiceService{
		guideVoices:  defaultGuideVoices,
		femalePool:   defaultFemaleVoicePool,
		malePool:     defaultMaleVoicePool,
		fallbackPool: defaultFallbackVoicePool,
	}
}

// DefaultVoice 未映射角色的兜底音色
func (s *VoiceService) DefaultVoice() string {
	return s.fallbackPool[0]
}

// AssignVoices 计算角色ID到音色ID的映射
// 向导用专属音色；专家按性别从对应池轮转取用，各池计数器独立：
// 第一位女性专家总是拿到女声池的第一个音色，与之前出现过多少男性专家无关。
// 为保证可重算性，遍历按角色ID排序进行。
func (s *VoiceService) AssignVoices(characters map[string]models.CharacterProfile) map[string]string {
	voiceMap := make(map[string]string, len(characters))

	ids := make([]string, 0, len(characters))
	for id := range characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	femaleIdx, maleIdx, fallbackIdx := 0, 0, 0

	for _, id := range ids {
		if voice, isGuide := s.guideVoices[id]; isGuide {
			voiceMap[id] = voice
			continue
		}

		switch characters[id].Gender {
		case "female":
			voiceMap[id] = s.femalePool[femaleIdx%len(s.femalePool)]
			femaleIdx++
		case "male":
			voiceMap[id] = s.malePool[maleIdx%len(s.malePool)]
			maleIdx++
		default:
			voiceMap[id] = s.fallbackPool[fallbackIdx%len(s.fallbackPool)]
			fallbackIdx++
		}
	}

	return voiceMap
}
