// Package influxdb records native-call metrics in InfluxDB.
//
// Every call into the trading library is written as one point of the
// native_calls measurement, so broker latency and rejection rates can be
// charted next to each other:
//
//	native_calls,op=QueryData,category=chicang,outcome=ok duration_ms=84.2
//
// Login attempts are written to the logins measurement.
//
// Writes are non-blocking and batched; errors surface through SetOnError.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteNativeCall("SendOrder", "buy", influxdb.OutcomeOK, 120*time.Millisecond)
package influxdb
