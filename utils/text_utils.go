package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// DeduplicateSlice 去重字符串切片，去掉首尾空白和空串，保持首次出现的顺序
func DeduplicateSlice(input []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0)

	for _, val := range input {
		val = strings.TrimSpace(val)
		if val != "" && !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}

	return result
}

// KeywordList 有序去重的关键词集合，零值可用
type KeywordList struct {
	items []string
	seen  map[string]struct{}
}

// NewKeywordList 用初始关键词创建集合
func NewKeywordList(words ...string) *KeywordList {
	l := &KeywordList{}
	l.Add(words...)
	return l
}

// Add 追加关键词，空串和已存在的会被忽略
func (l *KeywordList) Add(words ...string) {
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := l.seen[w]; ok {
			continue
		}
		l.seen[w] = struct{}{}
		l.items = append(l.items, w)
	}
}

// Reset 清空集合
func (l *KeywordList) Reset() {
	l.items = nil
	l.seen = nil
}

func (l *KeywordList) Contains(w string) bool {
	_, ok := l.seen[w]
	return ok
}

func (l *KeywordList) Len() int {
	return len(l.items)
}

// Items 返回副本，调用方修改不影响集合
func (l *KeywordList) Items() []string {
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

// NormalizeTerm 统一搜索词：全角转半角并去掉首尾空白
func NormalizeTerm(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// RuneLen 按字符计算长度
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// DropLastRune 去掉最后一个字符
func DropLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// IndexOf 返回元素在切片中的索引，如果不存在则返回-1
func IndexOf(slice []string, element string) int {
	for i, e := range slice {
		if e == element {
			return i
		}
	}
	return -1
}
