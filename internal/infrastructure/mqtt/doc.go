// Package mqtt publishes gateway events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
//	{prefix}/status              retained  gateway online/offline
//	{prefix}/{account}/session   retained  login state (attempting, logged_in, ...)
//	{prefix}/{account}/order     event     one per order sent
//	{prefix}/{account}/cancel    event     one per cancel request
//
// Payloads never include passwords. The gateway does not subscribe to
// anything; orders are only accepted over HTTP.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishState(client.Topics().Session("main"), map[string]any{"state": "logged_in"})
package mqtt
