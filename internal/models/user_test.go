package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentWeight(t *testing.T) {
	user := &User{}
	assert.Equal(t, 0.0, user.CurrentWeight())

	now := time.Now()
	user.WeightHistory = []WeightEntry{
		{Weight: 82, Date: now.AddDate(0, -2, 0)},
		{Weight: 79, Date: now},
		{Weight: 80, Date: now.AddDate(0, -1, 0)},
	}
	assert.Equal(t, 79.0, user.CurrentWeight(), "latest entry wins regardless of order")
}

func TestRegistrationDate(t *testing.T) {
	created := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	user := &User{CreatedAt: created}
	assert.Equal(t, created, user.RegistrationDate(), "falls back to account creation")

	oldest := created.AddDate(0, 0, 1)
	user.WeightHistory = []WeightEntry{
		{Weight: 80, Date: oldest.AddDate(0, 1, 0)},
		{Weight: 81, Date: oldest},
	}
	assert.Equal(t, oldest, user.RegistrationDate())
}
