// internal/models/episode.go
package models

import "fmt"

// 场景类型常量
const (
	SceneTypeDialogue    = "dialogue"
	SceneTypeExplanation = "explanation"
	SceneTypeQuiz        = "quiz"
	SceneTypeTransition  = "transition"
	SceneTypeCelebration = "celebration"
)

// 角色类型常量
const (
	RoleGuide  = "guide"
	RoleExpert = "expert"
)

// DefaultEmotion 未标注情绪时的默认值
const DefaultEmotion = "neutral"

// ValidEmotions 剧本允许的8种情绪枚举
var ValidEmotions = map[string]bool{
	"neutral":    true,
	"excited":    true,
	"thinking":   true,
	"surprised":  true,
	"happy":      true,
	"explaining": true,
	"silly":      true,
	"shy":        true,
}

// Episode 表示一集完整的节目内容
// 由两阶段生成链产生，按slug持久化为单个JSON文档
type Episode struct {
	EpisodeID      string                      `json:"episode_id"`
	Slug           string                      `json:"slug,omitempty"`
	Question       string                      `json:"question"`
	AnswerSummary  string                      `json:"answer_summary"`
	AnswerDetailed string                      `json:"answer_detailed,omitempty"`
	Characters     map[string]CharacterProfile `json:"characters"`
	Acts           []Act                       `json:"acts"`
	KeyVisuals     []KeyVisual                 `json:"key_visuals,omitempty"`

	// VoiceMap 角色ID到合成音色ID的映射
	// 派生数据：缺失时可随时从Characters重新计算
	VoiceMap map[string]string `json:"voice_map,omitempty"`

	// AudioCache 场景键("{act}-{scene}")到base64音频的映射
	// 只追加，允许部分覆盖，已写入的键永不覆盖
	AudioCache map[string]string `json:"audio_cache,omitempty"`
}

// CharacterProfile 表示一个出场角色（向导或专家）
type CharacterProfile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Gender      string `json:"gender,omitempty"`
	Color       string `json:"color,omitempty"`
	AccentColor string `json:"accentColor,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	Personality string `json:"personality,omitempty"`
}

// Act 表示一幕，场景顺序即叙事顺序
type Act struct {
	Act    int     `json:"act"`
	Title  string  `json:"title"`
	Scenes []Scene `json:"scenes"`
}

// Scene 表示剧本中的一个场景
// Type决定哪些字段有效：dialogue/explanation带character+emotion+text，
// quiz带question+options，transition带destination+travel_mode，
// celebration只带text
type Scene struct {
	Type string `json:"type"`

	// dialogue / explanation
	Character         string   `json:"character,omitempty"`
	Emotion           string   `json:"emotion,omitempty"`
	Text              string   `json:"text,omitempty"`
	Background        string   `json:"background,omitempty"`
	CharactersPresent []string `json:"charactersPresent,omitempty"`
	Visual            string   `json:"visual,omitempty"`

	// quiz
	Question string       `json:"question,omitempty"`
	Options  []QuizOption `json:"options,omitempty"`

	// transition
	Destination string `json:"destination,omitempty"`
	TravelMode  string `json:"travel_mode,omitempty"`
}

// QuizOption 测验选项，三个选项中恰好一个correct
type QuizOption struct {
	Text     string `json:"text"`
	Correct  bool   `json:"correct"`
	Response string `json:"response"`
}

// KeyVisual 关键示意图引用
type KeyVisual struct {
	ID          string `json:"id"`
	Moment      string `json:"moment,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// EpisodeSummary 用于资料库列表展示，不携带场景和音频数据
type EpisodeSummary struct {
	Slug          string `json:"slug"`
	Question      string `json:"question"`
	AnswerSummary string `json:"answer_summary"`
	SceneCount    int    `json:"scene_count,omitempty"`
	AudioCached   int    `json:"audio_cached,omitempty"`
}

// SceneKey 计算场景的缓存键
// 只要幕/场景顺序不变，键就稳定
func SceneKey(actIndex, sceneIndex int) string {
	return fmt.Sprintf("%d-%d", actIndex, sceneIndex)
}

// IsAudioEligible 判断场景是否需要合成语音
// 只有带非空文本的dialogue/explanation场景参与音频缓存
func (s *Scene) IsAudioEligible() bool {
	if s.Type != SceneTypeDialogue && s.Type != SceneTypeExplanation {
		return false
	}
	return s.Text != ""
}

// SceneCount 统计全集场景总数
func (e *Episode) SceneCount() int {
	total := 0
	for _, act := range e.Acts {
		total += len(act.Scenes)
	}
	return total
}

// EligibleSceneCount 统计需要语音的场景数
func (e *Episode) EligibleSceneCount() int {
	total := 0
	for _, act := range e.Acts {
		for i := range act.Scenes {
			if act.Scenes[i].IsAudioEligible() {
				total++
			}
		}
	}
	return total
}

// HasActs 判断缓存记录是否完整可复用
// 零幕的记录视为无效缓存，不满足复用检查
func (e *Episode) HasActs() bool {
	return len(e.Acts) > 0
}
