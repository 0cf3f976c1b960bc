package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEFAULT_MARGIN_PERCENT", "")
	t.Setenv("LEAD_AUTO_ASSIGN_ENABLED", "")

	cfg := Load()
	assert.Equal(t, "25", cfg.Pricing.DefaultMarginPercent.String())
	assert.True(t, cfg.Lead.AutoAssignEnabled)
	assert.Equal(t, 24*time.Hour, cfg.Lead.Window)
	assert.Equal(t, 10*time.Minute, cfg.Invoice.StaleAfter)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEFAULT_MARGIN_PERCENT", "30.5")
	t.Setenv("DISCOUNT_CODE_PREFIX", " promo ")
	t.Setenv("DISCOUNT_CODE_LENGTH", "8")
	t.Setenv("PAYMENT_LINK_EXPIRY_HOURS", "12")
	t.Setenv("PAYMENT_LINK_BASE_URL", "https://pay.example.com/")
	t.Setenv("LEAD_AUTO_ASSIGN_ENABLED", "off")
	t.Setenv("INVOICE_GENERATION_STALE_MINUTES", "3")

	cfg := Load()
	assert.Equal(t, "30.5", cfg.Pricing.DefaultMarginPercent.String())
	assert.Equal(t, "PROMO", cfg.DiscountCode.Prefix)
	assert.Equal(t, 8, cfg.DiscountCode.Length)
	assert.Equal(t, 12, cfg.PaymentLink.ExpiryHours)
	assert.Equal(t, "https://pay.example.com", cfg.PaymentLink.BaseURL)
	assert.False(t, cfg.Lead.AutoAssignEnabled)
	assert.Equal(t, 3*time.Minute, cfg.Invoice.StaleAfter)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DEFAULT_MARGIN_PERCENT", "abc")
	t.Setenv("DISCOUNT_CODE_LENGTH", "six")

	cfg := Load()
	assert.Equal(t, "25", cfg.Pricing.DefaultMarginPercent.String())
	assert.Equal(t, 6, cfg.DiscountCode.Length)
}

func TestPricingRulesFallBackToDefaults(t *testing.T) {
	holder, err := loadPricingRules(zap.NewNop(), t.TempDir())
	require.NoError(t, err)

	rules := holder.Get()
	assert.Equal(t, "general", rules.DefaultMode)
	require.Len(t, rules.Modes, 1)
	assert.Equal(t, "special", rules.Modes[0].Mode)
	assert.Contains(t, rules.Modes[0].Keywords, "wedding")
}

func TestPricingRulesFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`pricing:
  defaultMode: General
  modes:
    - mode: Special
      keywords: [" Wedding ", "Gala"]
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pricing.yml"), content, 0o600))

	holder, err := loadPricingRules(zap.NewNop(), dir)
	require.NoError(t, err)

	rules := holder.Get()
	assert.Equal(t, "general", rules.DefaultMode)
	require.Len(t, rules.Modes, 1)
	assert.Equal(t, "special", rules.Modes[0].Mode)
	assert.Equal(t, []string{"wedding", "gala"}, rules.Modes[0].Keywords)
}

func TestPricingRulesRejectsEmptyKeywords(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`pricing:
  defaultMode: general
  modes:
    - mode: special
      keywords: []
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pricing.yml"), content, 0o600))

	_, err := loadPricingRules(zap.NewNop(), dir)
	require.Error(t, err)
}
