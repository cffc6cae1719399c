package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeClassification(t *testing.T) {
	ok := OK(200, map[string]interface{}{"id": 1})
	assert.False(t, ok.Failed())
	assert.False(t, ok.NotFound())

	missing := Fail(404, "not found", nil)
	assert.True(t, missing.Failed())
	assert.True(t, missing.NotFound())

	broken := Fail(500, "boom", map[string]interface{}{"detail": "database on fire"})
	assert.True(t, broken.Failed())
	assert.False(t, broken.NotFound())
	assert.Equal(t, "database on fire", broken.Detail())
}

func TestDetailAbsent(t *testing.T) {
	assert.Empty(t, Fail(500, "boom", nil).Detail())
	assert.Empty(t, Fail(500, "boom", map[string]interface{}{"detail": 42}).Detail())
}

func TestDecodePrefersRaw(t *testing.T) {
	result := OK(200, map[string]interface{}{"id": float64(99)}).
		WithRaw([]byte(`{"id":7,"title":"raw wins"}`))

	var decoded struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, result.Decode(&decoded))
	assert.Equal(t, 7, decoded.ID)
	assert.Equal(t, "raw wins", decoded.Title)
}

func TestDecodeFallsBackToResponseMap(t *testing.T) {
	result := OK(200, map[string]interface{}{"id": 7})

	var decoded struct {
		ID int `json:"id"`
	}
	require.NoError(t, result.Decode(&decoded))
	assert.Equal(t, 7, decoded.ID)
}
