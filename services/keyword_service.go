package services

import (
	"regexp"
	"strings"

	"counselor_recommend/config"
	"counselor_recommend/utils"
)

// 2-4 个连续汉字
var cjkWordPattern = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]{2,4}`)

// KeywordExtractor 从测评结论等文本中提取关键词
type KeywordExtractor struct {
	rules     []config.KeywordRule
	stopWords map[string]struct{}
}

func NewKeywordExtractor(dict config.Dictionary) *KeywordExtractor {
	rules := make([]config.KeywordRule, 0, len(dict.AssessmentRules))
	for _, r := range dict.AssessmentRules {
		if strings.TrimSpace(r.Trigger) == "" {
			continue
		}
		rules = append(rules, config.KeywordRule{
			Trigger:  r.Trigger,
			Keywords: append([]string(nil), r.Keywords...),
		})
	}
	return &KeywordExtractor{
		rules:     rules,
		stopWords: toSet(dict.StopWords),
	}
}

// Extract 先按词表匹配触发词，再用正则提取中文词作为补充，结果去重且保持顺序
func (e *KeywordExtractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	list := utils.NewKeywordList()
	for _, r := range e.rules {
		if strings.Contains(text, r.Trigger) {
			list.Add(r.Keywords...)
		}
	}
	for _, word := range cjkWordPattern.FindAllString(text, -1) {
		if _, stop := e.stopWords[word]; !stop {
			list.Add(word)
		}
	}
	return list.Items()
}

// KeywordExpander 生成关键词的模糊匹配变体
type KeywordExpander struct {
	suffixes  []string
	locations []string
	locSet    map[string]struct{}
}

func NewKeywordExpander(dict config.Dictionary) *KeywordExpander {
	return &KeywordExpander{
		suffixes:  utils.DeduplicateSlice(dict.Suffixes),
		locations: utils.DeduplicateSlice(dict.Locations),
		locSet:    toSet(dict.Locations),
	}
}

// Expand 原词总是保留；去掉后缀后仍有两个字以上的加入去后缀形式；
// 超过三个字且不是地名的词加入去掉末字的形式
func (x *KeywordExpander) Expand(keywords []string) []string {
	out := utils.NewKeywordList()
	for _, kw := range keywords {
		base := strings.TrimSpace(kw)
		if base == "" {
			continue
		}
		out.Add(base)

		for _, suffix := range x.suffixes {
			if !strings.HasSuffix(base, suffix) || len(base) == len(suffix) {
				continue
			}
			if stripped := strings.TrimSuffix(base, suffix); utils.RuneLen(stripped) >= 2 {
				out.Add(stripped)
			}
		}

		if utils.RuneLen(base) > 3 && !x.IsLocation(base) {
			out.Add(utils.DropLastRune(base))
		}
	}
	return out.Items()
}

// IsLocation 判断是否为地名：与地名表完全相同，或包含某个地名
func (x *KeywordExpander) IsLocation(word string) bool {
	if _, ok := x.locSet[word]; ok {
		return true
	}
	for _, loc := range x.locations {
		if strings.Contains(word, loc) {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			set[it] = struct{}{}
		}
	}
	return set
}
