package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)

	assert.NotNil(t, doc.Paths.Find("/payments/verify"))
	assert.NotNil(t, doc.Paths.Find("/bookings/{bookingRef}/cancel"))
}
