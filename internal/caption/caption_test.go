package caption

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Format(t *testing.T) {
	out := Build("Big News", "First paragraph here.\nSecond line ignored.", "https://example.com/p/1")
	assert.Equal(t, "【Big News】\nFirst paragraph here.\n\n原文阅读：https://example.com/p/1\n#菲律宾华社 #FilChiOC", out)
}

func TestBuild_EmptyBody(t *testing.T) {
	out := Build("Title", "", "https://example.com")
	assert.True(t, strings.HasPrefix(out, "【Title】"))
	assert.Contains(t, out, "原文阅读：https://example.com")
}

func TestBuild_SnippetTruncatedByRunes(t *testing.T) {
	body := strings.Repeat("新", 500)
	out := Build("T", body, "https://example.com")
	assert.Contains(t, out, strings.Repeat("新", SnippetLimit))
	assert.NotContains(t, out, strings.Repeat("新", SnippetLimit+1))
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build("T", "B", "L")
	b := Build("T", "B", "L")
	assert.Equal(t, a, b)
}

func TestBuildWithOverrides(t *testing.T) {
	out := BuildWithOverrides("Title", "Body text", "https://example.com", "Custom header!", "Custom snippet")
	assert.True(t, strings.HasPrefix(out, "Custom header!\nCustom snippet"))
	assert.NotContains(t, out, "【Title】")
}

func TestBuildWithOverrides_EmptyFallsBackToDerived(t *testing.T) {
	assert.Equal(t,
		Build("Title", "Body text", "https://example.com"),
		BuildWithOverrides("Title", "Body text", "https://example.com", "", " "))
}

func TestStaticSource(t *testing.T) {
	out, err := StaticSource{}.Caption(context.Background(), "T", "B", "L")
	require.NoError(t, err)
	assert.Equal(t, Build("T", "B", "L"), out)
}

func TestValidateCaptionJSON(t *testing.T) {
	require.NoError(t, validateCaptionJSON(`{"caption":"hello"}`))
	assert.Error(t, validateCaptionJSON(`{"caption":""}`))
	assert.Error(t, validateCaptionJSON(`{"text":"wrong field"}`))
	assert.Error(t, validateCaptionJSON(`{"caption":"x","extra":1}`))
}

func TestCleanJSONBlock(t *testing.T) {
	assert.Equal(t, `{"caption":"x"}`, cleanJSONBlock("```json\n{\"caption\":\"x\"}\n```"))
	assert.Equal(t, `{"caption":"x"}`, cleanJSONBlock(`{"caption":"x"}`))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "a", firstLine("\n\n  a  \nb"))
	assert.Equal(t, "", firstLine("   \n  "))
}
