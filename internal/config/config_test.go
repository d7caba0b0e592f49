package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsBadOrder(t *testing.T) {
	c := Default()
	c.Order = 0
	require.Error(t, c.Validate())
}

func TestValidateRejectsBadBufferCapacity(t *testing.T) {
	c := Default()
	c.IndexBufferCapacity = 0
	require.Error(t, c.Validate())

	c = Default()
	c.DataBufferCapacity = 0
	require.Error(t, c.Validate())
}

func TestValidateRejectsEmptyPaths(t *testing.T) {
	c := Default()
	c.IndexPath = ""
	require.Error(t, c.Validate())
}
