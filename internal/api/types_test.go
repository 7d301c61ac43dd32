package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMyNagaStatusBreakdownUnmarshal(t *testing.T) {
	raw := `{"New":5,"In Progress":3,"Resolved":12,"total":20}`

	var b MyNagaStatusBreakdown
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	assert.Equal(t, 20, b.Total)
	assert.Equal(t, 5, b.Count("New"))
	assert.Equal(t, 3, b.Count("In Progress"))
	assert.Equal(t, 12, b.Count("Resolved"))
	assert.Equal(t, 0, b.Count("Dismissed"))
	_, hasTotalKey := b.Counts["total"]
	assert.False(t, hasTotalKey, "total key belongs in Total, not Counts")
}

func TestMyNagaStatusBreakdownRoundTrip(t *testing.T) {
	b := MyNagaStatusBreakdown{
		Counts: map[string]int{"New": 1, "Turned-Over": 2},
		Total:  3,
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var back MyNagaStatusBreakdown
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, b, back)
}

func TestCasePatchMarshalsOnlySetFields(t *testing.T) {
	status := StatusResolved
	office := "CEO"
	data, err := json.Marshal(CasePatch{Status: &status, Office: &office})
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, map[string]interface{}{
		"status": StatusResolved,
		"office": "CEO",
	}, m)
}

func TestCasePatchFromCaseCarriesMutableFields(t *testing.T) {
	c := Case{
		ID:              9,
		ControlNo:       "2024-0009",
		Category:        "Flooding",
		Barangay:        "Triangulo",
		Status:          StatusOpen,
		MyNagaAppStatus: "In Progress",
	}

	p := c.Patch()
	require.NotNil(t, p.Category)
	assert.Equal(t, "Flooding", *p.Category)
	require.NotNil(t, p.Status)
	assert.Equal(t, StatusOpen, *p.Status)
	require.NotNil(t, p.MyNagaAppStatus)
	assert.Equal(t, "In Progress", *p.MyNagaAppStatus)
}
