package ths

import "strings"

// QueryCategory selects the data set returned by QueryData.
type QueryCategory int32

// Query categories, in the order the library numbers them.
const (
	QueryFunds         QueryCategory = iota // zijin: 资金
	QueryHoldings                           // chicang: 持仓
	QueryPendingOrders                      // weituo: 当日委托
	QueryFilledOrders                       // chengjiao: 当日成交
	QueryCancelable                         // weituokeche: 可撤委托
	QueryShareholders                       // gudong: 股东账户
)

// OrderSide selects buy or sell for SendOrder.
type OrderSide int32

// Order sides.
const (
	SideBuy OrderSide = iota
	SideSell
)

// HistoryCategory selects the data set returned by QueryHistoryData.
type HistoryCategory int32

// History categories.
const (
	HistoryOrders HistoryCategory = iota // weituo: 历史委托
	HistoryFills                         // chengjiao: 历史成交
)

// Hints returned to clients for unrecognised names.
const (
	queryCategoryHint   = "参数错误,应为 zijin, chicang, weituo, chengjiao, weituokeche, gudong"
	orderSideHint       = "url路径参数错误,应为 buy, sell"
	historyCategoryHint = "参数错误,应为 weituo, chengjiao"
)

var queryCategoryNames = []string{
	QueryFunds:         "zijin",
	QueryHoldings:      "chicang",
	QueryPendingOrders: "weituo",
	QueryFilledOrders:  "chengjiao",
	QueryCancelable:    "weituokeche",
	QueryShareholders:  "gudong",
}

var orderSideNames = []string{
	SideBuy:  "buy",
	SideSell: "sell",
}

var historyCategoryNames = []string{
	HistoryOrders: "weituo",
	HistoryFills:  "chengjiao",
}

// ParseQueryCategory maps a case-insensitive name to its query category.
func ParseQueryCategory(name string) (QueryCategory, error) {
	if i := indexOf(queryCategoryNames, name); i >= 0 {
		return QueryCategory(i), nil
	}
	return 0, &CategoryError{Family: "query", Name: name, Hint: queryCategoryHint}
}

// ParseOrderSide maps a case-insensitive name to its order side.
func ParseOrderSide(name string) (OrderSide, error) {
	if i := indexOf(orderSideNames, name); i >= 0 {
		return OrderSide(i), nil
	}
	return 0, &CategoryError{Family: "order", Name: name, Hint: orderSideHint}
}

// ParseHistoryCategory maps a case-insensitive name to its history category.
func ParseHistoryCategory(name string) (HistoryCategory, error) {
	if i := indexOf(historyCategoryNames, name); i >= 0 {
		return HistoryCategory(i), nil
	}
	return 0, &CategoryError{Family: "history", Name: name, Hint: historyCategoryHint}
}

func (c QueryCategory) String() string   { return nameOf(queryCategoryNames, int(c)) }
func (s OrderSide) String() string       { return nameOf(orderSideNames, int(s)) }
func (c HistoryCategory) String() string { return nameOf(historyCategoryNames, int(c)) }

func indexOf(names []string, name string) int {
	lower := strings.ToLower(name)
	for i, n := range names {
		if n == lower {
			return i
		}
	}
	return -1
}

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "unknown"
	}
	return names[i]
}
