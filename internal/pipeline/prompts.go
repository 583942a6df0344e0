package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"timecast/internal/models"
)

// retryAmendment is appended to the extraction prompt when the first pass
// yields zero usable events.
const retryAmendment = "补充要求：必须返回至少 8 条，不能为空数组。"

func buildNewsPrompt(req models.GenerationRequest) string {
	langText := "English"
	if req.Language == models.LanguageChinese {
		langText = "中文"
	}

	lines := []string{
		`你是资深新闻编辑与研究助手。目标：围绕指定时间段与地区，整理"权威 + 重要 + 有趣"的历史新闻条目，形成可用于播客的事件清单。`,
		``,
		fmt.Sprintf(`时间范围: %s 到 %s`, req.StartDate, req.EndDate),
		fmt.Sprintf(`国家/地区重点: %s`, regionOrGlobal(req.Region)),
		fmt.Sprintf(`关注分类: %s`, strings.Join(req.Categories, "、")),
		fmt.Sprintf(`输出语言: %s`, langText),
		``,
		`硬性规则（必须遵守）：`,
		`1) 做事件去重：同一事件多家媒体报道要合并成 1 条（可在 sources 中补充其他来源）。`,
		`2) 质量优先：优先选择权威媒体、信息密度高、影响面大、具有长期意义或"转折点"属性的事件。`,
		`3) 每条尽量给出可信来源媒体和链接。`,
		`4) 至少 10 条，最多 30 条。`,
		`5) 按主题均衡覆盖（比如 3–5 个主题）。`,
		``,
		`评估标准（用于排序，写进你的判断而不是输出公式）：`,
		`- 权威性：媒体可信度、是否一手信息/可靠引用`,
		`- 重要性：影响范围、对行业/社会的后果`,
		`- 可讲性：能否用 30–60 秒讲清楚`,
		``,
		`输出格式：只输出 JSON 数组，每个元素包含字段：`,
		`- title: 口播友好的一句话标题（原创改写）`,
		`- date: ISO 日期（YYYY-MM-DD）`,
		`- category: 从关注分类中选 1 个最贴切的`,
		`- whyImportant: 1–2 句说明"为什么值得在这个时间段回看"`,
		`- sourceName: 主来源媒体名`,
		`- url: 主来源链接`,
		`- sources: 可选，数组，列出同一事件的其他来源 {sourceName, url}`,
		``,
		`禁止输出"无法联网/无法访问实时新闻源/请允许我检索"等元信息。`,
	}
	return strings.Join(lines, "\n")
}

func buildScriptPrompt(req models.GenerationRequest, events []models.NewsEvent) string {
	langName := "English"
	if req.Language == models.LanguageChinese {
		langName = "中文"
	}

	eventsJSON, _ := json.Marshal(events)

	lines := []string{
		`You are an experienced news podcast host and editor.`,
		fmt.Sprintf(`Create a scripted single-host news podcast in %s.`, langName),
		``,
		fmt.Sprintf(`Time range: %s to %s.`, req.StartDate, req.EndDate),
		fmt.Sprintf(`Geographic focus: %s.`, regionOrGlobal(req.Region)),
		fmt.Sprintf(`Selected categories: %s.`, strings.Join(req.Categories, ", ")),
		``,
		`Requirements:`,
		`- Use ONLY the events provided below as factual anchors.`,
		`- Do NOT list news chronologically; group into 3-5 themes.`,
		`- Single narrator only.`,
		`- Do NOT include "来源：xxx" / "Source: xxx" in scriptText.`,
		fmt.Sprintf(`- title must be meaningful and based on the script content, in %s.`, langName),
		fmt.Sprintf(`- summary must be 2-3 sentences, in %s.`, langName),
		`- scriptText must be a ready-to-read monologue.`,
		``,
		`Length target: 4-6 minutes speaking time.`,
		``,
		`Return JSON object with keys: title, summary, scriptText, keyPoints.`,
		``,
		fmt.Sprintf(`Events JSON: %s`, eventsJSON),
	}
	return strings.Join(lines, "\n")
}

func regionOrGlobal(region string) string {
	if region == "" {
		return models.DefaultRegion
	}
	return region
}
