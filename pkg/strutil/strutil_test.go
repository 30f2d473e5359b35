package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpaces(t *testing.T) {
	assert.Equal(t, "hello world", NormalizeSpaces("  hello \n\t  world  "))
	assert.Equal(t, "", NormalizeSpaces("   "))
}

func TestFormatCommas(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
		{-100, "-100"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCommas(tt.in))
		})
	}

	assert.Equal(t, "18,446,744,073,709,551,615", FormatCommas(uint64(18446744073709551615)))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitAndTrim("a, , b,c", ","))
	assert.Nil(t, SplitAndTrim(" , ", ","))
	assert.Nil(t, SplitAndTrim("", ","))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ノートパソコン", TruncateRunes("ノートパソコン", 20, "..."))
	assert.Equal(t, "ノート...", TruncateRunes("ノートパソコン", 3, "..."))
	assert.Equal(t, "...", TruncateRunes("abc", 0, "..."))
	assert.Equal(t, "abc", TruncateRunes("abc", -1, "..."))
}

func TestMaskSensitiveData(t *testing.T) {
	assert.Equal(t, "", MaskSensitiveData(""))
	assert.Equal(t, "***", MaskSensitiveData("abc"))
	assert.Equal(t, "abcd***", MaskSensitiveData("abcdefgh"))
	assert.Equal(t, "sk-1***wxyz", MaskSensitiveData("sk-1234567890wxyz"))
}

func TestKeywordMatcher(t *testing.T) {
	tests := []struct {
		name     string
		included []string
		excluded []string
		input    string
		want     bool
	}{
		{"OR group", []string{"ポイント|還元率|お得|UP"}, nil, "今だけポイント10倍", true},
		{"OR group case-insensitive", []string{"ポイント|還元率|お得|UP"}, nil, "価格up中", true},
		{"OR group miss", []string{"ポイント|還元率"}, nil, "値下がり", false},
		{"AND groups", []string{"冷蔵庫", "大容量|省エネ"}, nil, "省エネ冷蔵庫", true},
		{"AND groups miss", []string{"冷蔵庫", "大容量"}, nil, "省エネ冷蔵庫", false},
		{"Excluded wins", []string{"セール"}, []string{"終了"}, "セール終了", false},
		{"No conditions", nil, nil, "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewKeywordMatcher(tt.included, tt.excluded)
			assert.Equal(t, tt.want, m.Match(tt.input))
		})
	}

	m := NewKeywordMatcher([]string{"セール|特価"}, nil)
	assert.True(t, m.MatchAny("通常", "特価品"))
	assert.False(t, m.MatchAny("通常", "定価"))
}
