package filmapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateMarshal(t *testing.T) {
	d := Date{Value: time.Date(2023, time.May, 15, 0, 0, 0, 0, time.UTC)}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2023-05-15"`, string(data))
}

func TestDateUnmarshal(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2023-05-15"`), &d))
	assert.Equal(t, 2023, d.Value.Year())
	assert.Equal(t, time.May, d.Value.Month())
	assert.Equal(t, 15, d.Value.Day())
}

func TestDateUnmarshalRejectsMalformed(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"15/05/2023"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"2023-05"`), &d))
}

func TestDateRoundTripInStruct(t *testing.T) {
	type payload struct {
		When *Date `json:"when"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"when": "2024-01-02"}`), &p))
	require.NotNil(t, p.When)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"when": "2024-01-02"}`, string(data))

	require.NoError(t, json.Unmarshal([]byte(`{"when": null}`), &p))
	assert.Nil(t, p.When)
}
