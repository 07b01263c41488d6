// cmd/library/main.go
// 批量生成剧集资料库的命令行工具
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Corphon/WonderBotsMCP/internal/app"
	"github.com/Corphon/WonderBotsMCP/internal/config"
	"github.com/Corphon/WonderBotsMCP/internal/di"
	"github.com/Corphon/WonderBotsMCP/internal/services"
)

// 默认的种子问题集，覆盖不同主题便于演示
var defaultQuestions = []string{
	"Why is the sky blue?",
	"Why do volcanoes erupt?",
	"How do airplanes stay in the air?",
	"Why do we have to sleep?",
	"Where does rain come from?",
}

func main() {
	var textOnly bool

	rootCmd := &cobra.Command{
		Use:   "library [question...]",
		Short: "批量生成WonderBots剧集资料库",
		Long: "为每个问题生成一集两阶段剧本并存入资料库，已存在的剧集直接复用。\n" +
			"不带参数时使用内置的默认问题集。",
		RunE: func(cmd *cobra.Command, args []string) error {
			questions := defaultQuestions
			if len(args) > 0 {
				questions = args
			}
			return runGenerate(cmd.Context(), questions, textOnly)
		},
	}
	rootCmd.Flags().BoolVar(&textOnly, "text-only", false, "只生成剧本文本，跳过语音合成")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, questions []string, textOnly bool) error {
	// 初始化与服务器相同的配置和服务栈
	baseConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := config.InitConfig(baseConfig.DataDir); err != nil {
		return fmt.Errorf("初始化配置系统失败: %w", err)
	}
	if err := app.InitServices(); err != nil {
		return fmt.Errorf("初始化服务失败: %w", err)
	}

	container := di.GetContainer()
	episodeService, ok := container.Get("episode").(*services.EpisodeService)
	if !ok {
		return fmt.Errorf("剧集服务未正确初始化")
	}
	audioService, ok := container.Get("audio").(*services.AudioService)
	if !ok {
		return fmt.Errorf("语音服务未正确初始化")
	}

	type rowResult struct {
		question string
		slug     string
		status   string
		scenes   int
		audio    int
		elapsed  time.Duration
	}
	results := make([]rowResult, 0, len(questions))

	for i, question := range questions {
		log.Printf("📖 [%d/%d] 生成剧集: %s", i+1, len(questions), question)
		start := time.Now()

		episode, reused, err := episodeService.GenerateOrReuse(ctx, question)
		if err != nil {
			log.Printf("❌ 生成失败: %v", err)
			results = append(results, rowResult{
				question: question,
				status:   "失败: " + err.Error(),
				elapsed:  time.Since(start),
			})
			continue
		}

		status := "已生成"
		if reused {
			status = "已复用"
		}

		generated := 0
		if !textOnly {
			generated, err = audioService.SynthesizeMissing(ctx, episode)
			if err != nil {
				// 限流中止：已生成的部分已落盘，下次续跑
				log.Printf("⚠️ 语音合成中止: %v", err)
				status += "/合成中止"
			}
			if generated > 0 {
				log.Printf("🔊 新合成 %d 个场景语音", generated)
			}
		}

		results = append(results, rowResult{
			question: question,
			slug:     episode.Slug,
			status:   status,
			scenes:   episode.SceneCount(),
			audio:    len(episode.AudioCache),
			elapsed:  time.Since(start),
		})
	}

	// 汇总表格
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"问题", "SLUG", "状态", "场景", "语音", "耗时"})
	for _, r := range results {
		tw.AppendRow(table.Row{
			r.question,
			r.slug,
			r.status,
			strconv.Itoa(r.scenes),
			strconv.Itoa(r.audio),
			r.elapsed.Round(time.Second).String(),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	fmt.Println(tw.Render())

	return nil
}
