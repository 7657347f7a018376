package mempool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "first-fit", FirstFit.String())
	assert.Equal(t, "best-fit", BestFit.String())
	assert.Equal(t, "unknown Policy", Policy(7).String())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
	}{
		{"first-fit", FirstFit},
		{"FIRST_FIT", FirstFit},
		{"firstfit", FirstFit},
		{"first", FirstFit},
		{"best-fit", BestFit},
		{"Best Fit", BestFit},
		{"best", BestFit},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "worst-fit", "next"} {
		_, err := ParsePolicy(bad)
		assert.Error(t, err, "ParsePolicy(%q)", bad)
	}
}

func TestPolicyJSON(t *testing.T) {
	var v struct {
		Policy Policy `json:"policy"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"policy":"best_fit"}`), &v))
	assert.Equal(t, BestFit, v.Policy)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"policy":"best-fit"}`, string(out))

	v.Policy = Policy(3)
	_, err = json.Marshal(v)
	assert.Error(t, err)
}
