package middleware

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractBearerToken(t *testing.T) {
	require.Equal(t, "abc", extractBearerToken("Bearer abc"))
	require.Equal(t, "abc", extractBearerToken("bearer abc"))
	require.Equal(t, "", extractBearerToken(""))
	require.Equal(t, "", extractBearerToken("Basic abc"))
	require.Equal(t, "", extractBearerToken("Bearer"))
}
