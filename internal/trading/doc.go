// Package trading is the façade between HTTP handlers and the native
// session.
//
// Service resolves category names, calls the shared *ths.Client, decodes
// the result buffer and records side effects: an audit entry and an MQTT
// event for every order and cancel, and a latency metric for every native
// call. Side effects run off the request path; a slow broker or database
// never delays a trading response.
//
//	svc, err := trading.New(trading.Deps{Terminal: client, Account: "main", Logger: log})
//	go svc.Run(ctx)
//	data, err := svc.Query(ctx, "zijin")
//
// Errors are returned unchanged from the ths package so callers can tell
// client input (*ths.CategoryError, *ths.ConversionError), broker rejections
// (*ths.NativeError) and contract violations (*ths.ContractError) apart.
package trading
