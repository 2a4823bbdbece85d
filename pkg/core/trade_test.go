package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeekLabelRoundTrip(t *testing.T) {
	require.Equal(t, "Week0", WeekLabel(0))
	require.Equal(t, "Week12", WeekLabel(12))

	require.Equal(t, 0, WeekIndex("Week0"))
	require.Equal(t, 12, WeekIndex("Week12"))
	require.Equal(t, -1, WeekIndex("garbage"))
}

func TestWeekIndex_SortsNumerically(t *testing.T) {
	// String comparison would put Week10 before Week2.
	require.Less(t, WeekIndex("Week2"), WeekIndex("Week10"))
}

func TestRound2(t *testing.T) {
	require.Equal(t, 427.5, Round2(450*0.95))
	require.Equal(t, 8.55, Round2(427.5*0.02))
	require.Equal(t, 6.46, Round2(430.5*0.015))
	require.Equal(t, -1.23, Round2(-1.234))
}

func TestTradeRecord_String(t *testing.T) {
	option := TradeRecord{
		Week: "Week0", Action: ActionSellPut, Quantity: 1,
		Symbol: "SPY", Strike: 427.50, CashFlow: 8.55,
	}
	require.Equal(t, "Week0: SELL_PUT 1 SPY @ $427.50 - $+8.55", option.String())

	crypto := TradeRecord{
		Week: "Week1", Action: ActionBuyCrypto, Quantity: 2,
		Symbol: "BTC", CashFlow: -100000,
	}
	require.Equal(t, "Week1: BUY_CRYPTO 2 BTC - $-100000.00", crypto.String())
}

func TestTradeFilters(t *testing.T) {
	trade := TradeRecord{Strategy: StrategyWheel, Symbol: "SPY", Action: ActionSellPut}

	require.True(t, WithStrategyIn(StrategyWheel)(trade))
	require.False(t, WithStrategyIn(StrategyRotator)(trade))
	require.True(t, WithStrategyIn(StrategyRotator, StrategyWheel)(trade))

	require.True(t, WithSymbol("SPY")(trade))
	require.False(t, WithSymbol("QQQ")(trade))

	require.True(t, WithAction(ActionSellPut)(trade))
	require.False(t, WithAction(ActionSellCall)(trade))
}
