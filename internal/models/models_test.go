package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDMap_MarshalKeepsInsertionOrder(t *testing.T) {
	m := NewIDMap[string](3)
	m.Set(9, "nine")
	m.Set(2, "two")
	m.Set(14, "fourteen")
	m.Set(2, "deux")

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"9":"nine","2":"deux","14":"fourteen"}`, string(b))
	assert.Equal(t, []int64{9, 2, 14}, m.Keys())
}

func TestIDMap_ZeroValueEncodesEmptyObject(t *testing.T) {
	var results SearchResults

	b, err := json.Marshal(results)
	require.NoError(t, err)
	assert.JSONEq(t, `{"articles":{},"projects":{}}`, string(b))
}

func TestIDMap_UnmarshalKeepsDocumentOrder(t *testing.T) {
	var m IDMap[int]
	require.NoError(t, json.Unmarshal([]byte(`{"3":30,"1":10,"2":20}`), &m))

	assert.Equal(t, []int64{3, 1, 2}, m.Keys())
	assert.Equal(t, []int{30, 10, 20}, m.Values())
	v, ok := m.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestIDMap_UnmarshalRejectsNonNumericKeys(t *testing.T) {
	var m IDMap[int]
	err := json.Unmarshal([]byte(`{"abc":1}`), &m)
	assert.Error(t, err)
}

func TestContentKind_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    ContentKind
		wantErr bool
	}{
		{"code", ContentKindCode, false},
		{"IMAGE", ContentKindImage, false},
		{"", ContentKindText, false},
		{"video", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var k ContentKind
			err := k.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
		})
	}
}

func TestLanguage_ParseCaseInsensitive(t *testing.T) {
	lang, ok := ParseLanguage("typescript")
	assert.True(t, ok)
	assert.Equal(t, LanguageTypescript, lang)

	_, ok = ParseLanguage("cobol")
	assert.False(t, ok)
	assert.False(t, Language("").IsValid())
}

func TestContentForm_DecodesKindAndLanguage(t *testing.T) {
	var form NewContentForm
	err := json.Unmarshal([]byte(`{"chapter_id":1,"index":0,"kind":"code","body":"fn main(){}","language":"rust"}`), &form)
	require.NoError(t, err)

	assert.Equal(t, ContentKindCode, form.Kind)
	require.NotNil(t, form.Language)
	assert.Equal(t, LanguageRust, *form.Language)
}

func TestContent_Coherent(t *testing.T) {
	text := Content{Kind: ContentKindText, Body: "hi"}
	assert.True(t, text.Coherent())
	assert.Nil(t, text.Language())
	assert.Nil(t, text.HighlightedHTML())

	code := Content{Kind: ContentKindCode, Body: "ls", Code: &CodeBlock{Language: LanguageBash, HighlightedHTML: "<pre>ls</pre>"}}
	assert.True(t, code.Coherent())
	assert.Equal(t, LanguageBash, *code.Language())

	broken := Content{Kind: ContentKindCode, Body: "ls"}
	assert.False(t, broken.Coherent())
}

func TestNestedContent_OmitsCodeFieldsForText(t *testing.T) {
	b, err := json.Marshal(NestedContent{ID: 1, Kind: ContentKindText, Body: "hi", BodyURL: "hi"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.NotContains(t, raw, "highlighted_html")
	assert.NotContains(t, raw, "language")
	assert.Equal(t, "Text", raw["kind"])
}
