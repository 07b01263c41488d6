// internal/models/outline.go
package models

// EpisodeOutline 第一阶段（调研大纲）的结构化输出
type EpisodeOutline struct {
	Question       string        `json:"question"`
	CoreAnswer     string        `json:"core_answer"`
	DetailedAnswer string        `json:"detailed_answer"`
	KeyConcepts    []KeyConcept  `json:"key_concepts"`
	Experts        []ExpertBrief `json:"experts"`
	Environments   []string      `json:"environments"`
	Quizzes        []QuizSpec    `json:"quizzes"`
	KeyVisuals     []KeyVisual   `json:"key_visuals"`
	EpisodeArc     string        `json:"episode_arc"`
}

// KeyConcept 一个递进式知识点：类比为主，术语为辅（每个概念只允许一个术语）
type KeyConcept struct {
	Concept          string `json:"concept"`
	ChildExplanation string `json:"child_explanation"`
	RealTerminology  string `json:"real_terminology"`
	Analogy          string `json:"analogy"`
	AdvancedDetail   string `json:"advanced_detail"`
	ExpertIndex      int    `json:"expert_index"`
}

// ExpertBrief 大纲中的专家设定
type ExpertBrief struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Personality string   `json:"personality"`
	Expertise   string   `json:"expertise"`
	Environment string   `json:"environment"`
	Props       []string `json:"props,omitempty"`
}

// QuizSpec 大纲中的测验设定
type QuizSpec struct {
	AfterExpert int          `json:"after_expert"`
	Question    string       `json:"question"`
	Options     []QuizOption `json:"options"`
}
