package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 100000.0, cfg.InitialCapital)
	require.Equal(t, DataModeMock, cfg.DataMode)
	require.Equal(t, []string{"SPY", "QQQ", "IWM"}, cfg.WheelSymbols)
	require.Equal(t, []string{"BTC", "ETH", "SOL"}, cfg.RotatorSymbols)
}

func TestValidate_NamesOffendingField(t *testing.T) {
	cfg := Default()
	cfg.InitialCapital = -1
	require.ErrorContains(t, cfg.Validate(), "initial_capital")

	cfg = Default()
	cfg.DataMode = "replay"
	require.ErrorContains(t, cfg.Validate(), "data_mode")

	cfg = Default()
	cfg.WheelSymbols = nil
	require.ErrorContains(t, cfg.Validate(), "wheel_symbols")

	cfg = Default()
	cfg.Strategies[StrategyWheel] = false
	cfg.Strategies[StrategyRotator] = false
	require.ErrorContains(t, cfg.Validate(), "strategies")
}

func TestValidate_AllocationMustSumToOne(t *testing.T) {
	cfg := Default()
	cfg.Allocation[StrategyWheel] = 0.8
	cfg.Allocation[StrategyRotator] = 0.3
	require.ErrorContains(t, cfg.Validate(), "allocation")
}

func TestValidate_AllocationIgnoredForSingleStrategy(t *testing.T) {
	cfg := Default()
	cfg.Strategies[StrategyRotator] = false
	cfg.Allocation[StrategyWheel] = 0.5

	require.NoError(t, cfg.Validate())
	require.Equal(t, 1.0, cfg.AllocationFor(StrategyWheel))
}

func TestEnabledStrategies_FixedOrder(t *testing.T) {
	cfg := Default()
	require.Equal(t, []string{StrategyWheel, StrategyRotator}, cfg.EnabledStrategies())

	cfg.Strategies[StrategyWheel] = false
	require.Equal(t, []string{StrategyRotator}, cfg.EnabledStrategies())
}

func TestWeeks_DefaultsWhenUnset(t *testing.T) {
	cfg := Default()
	cfg.Simulation.Weeks = 0
	require.Equal(t, 52, cfg.Weeks())

	cfg.Simulation.Weeks = 12
	require.Equal(t, 12, cfg.Weeks())
}

func TestCryptoID_FallsBackToSymbol(t *testing.T) {
	cfg := Default()
	require.Equal(t, "bitcoin", cfg.CryptoID("BTC"))
	require.Equal(t, "XRP", cfg.CryptoID("XRP"))
}
