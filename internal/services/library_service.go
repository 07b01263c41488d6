// internal/services/library_service.go
package services

import (
	"encoding/base64"
	"strings"

	apperrors "github.com/Corphon/WonderBotsMCP/internal/errors"
	"github.com/Corphon/WonderBotsMCP/internal/models"
	"github.com/Corphon/WonderBotsMCP/internal/storage"
	"github.com/Corphon/WonderBotsMCP/internal/utils"
)

// LibraryService 按slug内容寻址的剧集存储
// 每个slug对应一份自描述JSON文档，保证至多一份持久化记录：
// Save从不覆盖已有记录，唯一的例外写路径是WriteBack（音频增量回填）。
type LibraryService struct {
	storage *storage.FileStorage
}

// NewLibraryService 创建剧集存储服务
func NewLibraryService(fileStorage *storage.FileStorage) *LibraryService {
	return &LibraryService{storage: fileStorage}
}

// episodeFilename slug到文件名的映射
func episodeFilename(slug string) string {
	return slug + ".json"
}

// Exists 检查slug是否已有持久化记录
func (s *LibraryService) Exists(slug string) bool {
	return s.storage.FileExists("", episodeFilename(slug))
}

// Load 读取slug对应的剧集文档
// 记录缺失返回NotFoundError，属于正常的空结果而不是故障
func (s *LibraryService) Load(slug string) (*models.Episode, error) {
	var episode models.Episode
	if err := s.storage.LoadJSONFile("", episodeFilename(slug), &episode); err != nil {
		return nil, apperrors.NewNotFoundError("剧集不存在: "+slug, err)
	}

	if episode.Slug == "" {
		episode.Slug = slug
	}
	return &episode, nil
}

// Save 持久化剧集，非覆盖语义
// slug已有记录时静默丢弃传入的剧集并返回nil，
// 这让"生成或复用"可以在不预先检查存在性的情况下安全调用。
// 代价是无法强制刷新一个已缓存的slug。
func (s *LibraryService) Save(slug string, episode *models.Episode) error {
	episode.Slug = slug

	written, err := s.storage.SaveJSONFileIfAbsent("", episodeFilename(slug), episode)
	if err != nil {
		return apperrors.NewProcessingError("保存剧集失败: "+slug, err)
	}
	if !written {
		utils.GetLogger().Info("剧集已存在，跳过写入", map[string]interface{}{"slug": slug})
	}
	return nil
}

// WriteBack 把增量回填后的剧集写回已有记录
// 这是非覆盖规则唯一不适用的写路径：目标是正在被补齐的既有记录，
// 不是一份竞争的新记录。只有音频缓存层使用它。
func (s *LibraryService) WriteBack(slug string, episode *models.Episode) error {
	episode.Slug = slug

	if err := s.storage.SaveJSONFile("", episodeFilename(slug), episode); err != nil {
		return apperrors.NewProcessingError("回写剧集失败: "+slug, err)
	}
	return nil
}

// List 枚举所有已存储剧集的摘要，不携带场景和音频数据
func (s *LibraryService) List() ([]models.EpisodeSummary, error) {
	names, err := s.storage.ListFiles("", ".json")
	if err != nil {
		return nil, apperrors.NewProcessingError("枚举剧集失败", err)
	}

	summaries := make([]models.EpisodeSummary, 0, len(names))
	for _, name := range names {
		slug := strings.TrimSuffix(name, ".json")

		episode, err := s.Load(slug)
		if err != nil {
			utils.GetLogger().Warn("跳过无法读取的剧集", map[string]interface{}{
				"file":  name,
				"error": err.Error(),
			})
			continue
		}

		summaries = append(summaries, models.EpisodeSummary{
			Slug:          slug,
			Question:      episode.Question,
			AnswerSummary: episode.AnswerSummary,
			SceneCount:    episode.SceneCount(),
			AudioCached:   len(episode.AudioCache),
		})
	}

	return summaries, nil
}

// FetchAudio 取出单个场景的缓存音频字节
// slug或场景键缺失都返回NotFoundError
func (s *LibraryService) FetchAudio(slug, sceneKey string) ([]byte, error) {
	episode, err := s.Load(slug)
	if err != nil {
		return nil, err
	}

	encoded, exists := episode.AudioCache[sceneKey]
	if !exists {
		return nil, apperrors.NewNotFoundError("场景音频未缓存: "+sceneKey, nil)
	}

	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.NewProcessingError("解码场景音频失败: "+sceneKey, err)
	}
	return audio, nil
}
