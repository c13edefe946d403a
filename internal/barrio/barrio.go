// 包 barrio：基于关键词的地址到 barrio 标签的启发式分类
package barrio

import (
	"strings"

	"medzone/internal/metrics"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 回退层级
const (
	TierKeyword      = "keyword"
	TierJurisdiction = "jurisdiction"
	TierProvince     = "province"
	TierFallback     = "fallback"
)

// Fallback 无任何命中时的标签
const Fallback = "Otros"

type entry struct {
	label    string
	keywords []string
}

type jurisdiction struct {
	label   string
	markers []string
}

type province struct {
	key   string
	label string
}

// Match 分类结果及其命中的层级
type Match struct {
	Label string `json:"label"`
	Tier  string `json:"tier"`
}

var provinces = buildProvinces(provinceNames)

// 文档注释：地址分类
// 背景：地址来自人工录入，格式不统一；按“关键词表 -> 城市辖区 -> 省份 -> Otros”逐层回退。
// 约束：纯函数，任何输入都返回非空标签；匹配为小写子串包含，不做分词与去重音。
func Classify(text string) string {
	return ClassifyDetail(text).Label
}

// ClassifyDetail 同 Classify，额外返回命中层级
func ClassifyDetail(text string) Match {
	m := classify(text)
	metrics.AddressClassifyTotal.WithLabelValues(m.Tier).Inc()
	return m
}

func classify(text string) Match {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return Match{Label: Fallback, Tier: TierFallback}
	}
	for _, e := range table {
		for _, k := range e.keywords {
			if strings.Contains(s, k) {
				return Match{Label: e.label, Tier: TierKeyword}
			}
		}
	}
	for _, j := range jurisdictions {
		for _, k := range j.markers {
			if strings.Contains(s, k) {
				return Match{Label: j.label, Tier: TierJurisdiction}
			}
		}
	}
	for _, p := range provinces {
		if strings.Contains(s, p.key) {
			return Match{Label: p.label, Tier: TierProvince}
		}
	}
	return Match{Label: Fallback, Tier: TierFallback}
}

// Labels 所有可能的 barrio 标签，按表顺序；不含辖区、省份与兜底标签
func Labels() []string {
	out := make([]string, len(table))
	for i, e := range table {
		out[i] = e.label
	}
	return out
}

// 约束：cases.Caser 非并发安全，只在包初始化时使用一次
func buildProvinces(names []string) []province {
	caser := cases.Title(language.Spanish)
	out := make([]province, 0, len(names))
	for _, n := range names {
		words := strings.Fields(caser.String(n))
		for i := 1; i < len(words); i++ {
			switch lw := strings.ToLower(words[i]); lw {
			case "de", "del", "la", "los":
				words[i] = lw
			}
		}
		out = append(out, province{key: n, label: strings.Join(words, " ") + " (Provincia)"})
	}
	return out
}
