package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveID_IsStable(t *testing.T) {
	assert.Equal(t, DeriveID("li-42"), DeriveID("li-42"),
		"the same completion must always map to the same notification id")
}

func TestDeriveID_DistinctPerLineItem(t *testing.T) {
	assert.NotEqual(t, DeriveID("li-1"), DeriveID("li-2"))
}

func TestDeriveID_IsValidUUID(t *testing.T) {
	_, err := uuid.Parse(DeriveID("li-42"))
	require.NoError(t, err)
}
