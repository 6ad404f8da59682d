package repositories

import (
	"net/url"
	"testing"

	"buddhist-lent/pledgeboard/internal/query"

	"github.com/stretchr/testify/require"
)

func mustParams(t *testing.T, res query.Resource, raw string) query.Params {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	p, err := res.ParseParams(v)
	require.NoError(t, err)
	return p
}
