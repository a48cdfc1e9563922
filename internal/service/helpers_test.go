package service

import (
	"testing"
	"time"

	"github.com/autumsam/postpilot/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGetExpiresAt(t *testing.T) {
	before := time.Now().Add(3600 * time.Second)
	got := GetExpiresAt(3600)
	after := time.Now().Add(3600 * time.Second)

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestJoinComments(t *testing.T) {
	assert.Equal(t, "", joinComments(nil))
	assert.Equal(t, "one", joinComments([]string{"one"}))
	assert.Equal(t, "one\ntwo", joinComments([]string{"one", "two"}))
}

func TestPlanFromProduct(t *testing.T) {
	assert.Equal(t, models.PlanPremium, planFromProduct("Premium"))
	assert.Equal(t, models.PlanPremium, planFromProduct("  premium  "))
	assert.Equal(t, models.PlanBasic, planFromProduct("BASIC"))
	assert.Equal(t, models.PlanFree, planFromProduct("free"))
	assert.Equal(t, models.PlanFree, planFromProduct("unknown product"))
	assert.Equal(t, models.PlanFree, planFromProduct(""))
}
