package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleString(t *testing.T) {
	assert.Equal(t, "prestige_award_general", PrestigeRole(ActionAward, TierGeneral).String())
	assert.Equal(t, "prestige_view", PrestigeRole(ActionView, "").String())
	assert.Equal(t, "vip_deduct", VIPRole(ActionDeduct).String())
	assert.Equal(t, "mc_approve_regional", MCRole(ActionApprove, TierRegional).String())
	assert.Equal(t, "mc_revoke", MCRole(ActionRevoke, "").String())
}

func TestVIPRoleWidensToPrestige(t *testing.T) {
	caps := VIPRole(ActionAward).Capabilities()
	assert.Equal(t, []string{"vip_award", "prestige_award"}, caps)

	caps = PrestigeRole(ActionAward, TierNational).Capabilities()
	assert.Equal(t, []string{"prestige_award_national"}, caps)
}

func TestCapabilityListDeduplicates(t *testing.T) {
	caps := CapabilityList([]Role{
		VIPRole(ActionView),
		PrestigeRole(ActionView, ""),
		VIPRole(ActionView),
	})
	assert.Equal(t, []string{"vip_view", "prestige_view"}, caps)
}
