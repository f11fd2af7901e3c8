package svcwatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerString(t *testing.T) {
	assert.Equal(t, "StatusChanged", TriggerStatusChanged.String())
	assert.Equal(t, "ServiceCreated", TriggerServiceCreated.String())
	assert.Equal(t, "ServiceDeleted", TriggerServiceDeleted.String())
	assert.Equal(t, "Unknown", Trigger(99).String())
}
