package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"counselor_recommend/config"
)

func TestKeywordExtractorExtract(t *testing.T) {
	x := NewKeywordExtractor(config.DefaultDictionary())

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "  ", want: []string{}},
		{name: "dictionary then regex", text: "中度焦虑", want: []string{"焦虑", "紧张", "担忧", "恐慌", "中度焦虑"}},
		{name: "stop word only", text: "轻度", want: []string{}},
		{name: "regex fallback", text: "睡眠质量差，情绪低落", want: []string{"睡眠质量", "情绪低落"}},
		{name: "several triggers keep rule order", text: "焦虑伴失眠", want: []string{"焦虑", "紧张", "担忧", "恐慌", "失眠", "睡眠", "入睡困难", "睡眠障碍", "焦虑伴失"}},
		{name: "no cjk", text: "Level 2", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, x.Extract(tt.text))
		})
	}
}

func TestKeywordExtractorNeverReturnsDuplicatesOrEmpty(t *testing.T) {
	x := NewKeywordExtractor(config.DefaultDictionary())
	for _, text := range []string{"焦虑焦虑", "重度抑郁 抑郁", "压力 压力 倦怠"} {
		got := x.Extract(text)
		seen := map[string]bool{}
		for _, w := range got {
			assert.NotEmpty(t, w)
			assert.False(t, seen[w], "duplicate %q in %v", w, got)
			seen[w] = true
		}
	}
}

func TestKeywordExpanderExpand(t *testing.T) {
	x := NewKeywordExpander(config.DefaultDictionary())

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "suffix stripped", in: []string{"焦虑症"}, want: []string{"焦虑症", "焦虑"}},
		{name: "suffix and truncation", in: []string{"睡眠障碍"}, want: []string{"睡眠障碍", "睡眠", "睡眠障"}},
		{name: "short prefix kept whole", in: []string{"快感"}, want: []string{"快感"}},
		{name: "location not truncated", in: []string{"北京朝阳区"}, want: []string{"北京朝阳区"}},
		{name: "exact location", in: []string{"呼和浩特"}, want: []string{"呼和浩特"}},
		{name: "three characters not truncated", in: []string{"恐惧感"}, want: []string{"恐惧感", "恐惧"}},
		{name: "four characters truncated", in: []string{"情绪低落"}, want: []string{"情绪低落", "情绪低"}},
		{name: "dedup and blanks", in: []string{"焦虑", " ", "焦虑"}, want: []string{"焦虑"}},
		{name: "empty", in: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, x.Expand(tt.in))
		})
	}
}

func TestKeywordExpanderKeepsEveryInput(t *testing.T) {
	dict := config.DefaultDictionary()
	x := NewKeywordExpander(dict)

	var inputs []string
	for _, words := range dict.MoodKeywords {
		inputs = append(inputs, words...)
	}
	for _, r := range dict.AssessmentRules {
		inputs = append(inputs, r.Keywords...)
	}
	inputs = append(inputs, "强迫症", "社交焦虑障碍", "学习问题", "上海浦东", "在线咨询")

	out := x.Expand(inputs)
	for _, in := range inputs {
		assert.Contains(t, out, in)
	}
	for _, w := range out {
		assert.NotEmpty(t, w)
	}
}

func TestKeywordExpanderSuffixProperty(t *testing.T) {
	dict := config.DefaultDictionary()
	x := NewKeywordExpander(dict)

	for _, base := range []string{"焦虑", "睡眠", "人际关系", "家庭"} {
		for _, suffix := range dict.Suffixes {
			kw := base + suffix
			assert.Contains(t, x.Expand([]string{kw}), base, "expanding %q", kw)
		}
	}
}

func TestIsLocation(t *testing.T) {
	x := NewKeywordExpander(config.DefaultDictionary())
	assert.True(t, x.IsLocation("上海"))
	assert.True(t, x.IsLocation("深圳南山"))
	assert.True(t, x.IsLocation("线上咨询"))
	assert.False(t, x.IsLocation("焦虑"))
}
