package roomdesign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusGenerating, StatusCompleted, StatusFailed, StatusOpen, StatusAccepted, StatusInProgress}
	legal := map[[2]Status]bool{
		{StatusPending, StatusGenerating}:   true,
		{StatusPending, StatusOpen}:         true,
		{StatusGenerating, StatusCompleted}: true,
		{StatusGenerating, StatusFailed}:    true,
		{StatusCompleted, StatusGenerating}: true,
		{StatusCompleted, StatusOpen}:       true,
		{StatusFailed, StatusGenerating}:    true,
		{StatusFailed, StatusOpen}:          true,
		{StatusOpen, StatusAccepted}:        true,
		{StatusAccepted, StatusInProgress}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestVisibleTo(t *testing.T) {
	designer := int64(9)
	d := &RoomDesign{UserID: 1, Status: StatusPending}
	assert.True(t, d.VisibleTo(1))
	assert.False(t, d.VisibleTo(2))

	d.Status = StatusOpen
	assert.True(t, d.VisibleTo(2))

	d.Status = StatusAccepted
	d.DesignerID = &designer
	assert.True(t, d.VisibleTo(designer))
	assert.False(t, d.VisibleTo(2))
}
