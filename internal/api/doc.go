// Package api provides the HTTP surface of the gateway.
//
// Routes mirror the broker terminal's operations:
//
//	GET  /query/{category}         today's funds, holdings, orders, fills
//	POST /order/{category}         buy or sell
//	GET  /order/cancel/{order_id}  cancel a pending order
//	POST /history/{category}       historical orders or fills by date range
//	GET  /health                   liveness and session state
//	GET  /audit                    recent orders and cancels
//
// Every response uses the same envelope:
//
//	{"success": true,  "data": <payload or null>}
//	{"success": false, "data": "<message>"}
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
