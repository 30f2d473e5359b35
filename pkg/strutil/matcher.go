package strutil

import "strings"

// KeywordMatcher 포함/제외 키워드 조건으로 문자열을 검사합니다.
//
// 포함 키워드는 항목끼리 AND, 항목 내부의 파이프(|)로 구분된 키워드끼리 OR 입니다.
// 제외 키워드는 하나라도 포함되면 매칭 실패입니다. 비교는 대소문자를 구분하지 않습니다.
//
//	m := NewKeywordMatcher([]string{"ポイント|還元率|お得|UP"}, nil)
//	m.Match("今ならポイント10倍") // true
type KeywordMatcher struct {
	groups   [][]string
	excluded []string
}

// NewKeywordMatcher 키워드를 미리 소문자로 정규화하여 KeywordMatcher를 생성합니다.
func NewKeywordMatcher(included, excluded []string) *KeywordMatcher {
	m := &KeywordMatcher{}

	for _, k := range excluded {
		if k = strings.TrimSpace(k); k != "" {
			m.excluded = append(m.excluded, strings.ToLower(k))
		}
	}

	for _, k := range included {
		var group []string
		for _, alt := range SplitAndTrim(k, "|") {
			group = append(group, strings.ToLower(alt))
		}
		if len(group) > 0 {
			m.groups = append(m.groups, group)
		}
	}

	return m
}

// Match s가 조건을 만족하는지 검사합니다. 포함 키워드가 없으면 제외 조건만 검사합니다.
func (m *KeywordMatcher) Match(s string) bool {
	lower := strings.ToLower(s)

	for _, k := range m.excluded {
		if strings.Contains(lower, k) {
			return false
		}
	}

	for _, group := range m.groups {
		matched := false
		for _, k := range group {
			if strings.Contains(lower, k) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// MatchAny texts 중 하나라도 조건을 만족하면 true를 반환합니다.
func (m *KeywordMatcher) MatchAny(texts ...string) bool {
	for _, s := range texts {
		if m.Match(s) {
			return true
		}
	}
	return false
}
