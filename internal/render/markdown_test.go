package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanHTML(t *testing.T) {
	out, err := PlanHTML("## Day 1\n- Louvre\n- Seine cruise\n\n| Item | Cost |\n|---|---|\n| Hotel | €120 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Day 1</h2>")
	assert.Contains(t, out, "<li>Louvre</li>")
	assert.Contains(t, out, "<table>")
}

func TestPlanHTML_OmitsRawHTML(t *testing.T) {
	out, err := PlanHTML("<script>alert(1)</script>\n\nhello")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<p>hello</p>")
}

func TestPlanHTML_Empty(t *testing.T) {
	out, err := PlanHTML("")
	require.NoError(t, err)
	assert.Empty(t, out)
}
