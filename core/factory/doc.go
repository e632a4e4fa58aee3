// Package factory provides a small generic registry used to build modules
// such as metrics sinks from configuration. A module is a type string plus a
// map of raw settings; factories decode the settings into typed structs.
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	_ = reg.Register("prometheus", newPromSink)
//	sink, err := reg.Create(factory.ModuleConfig{Type: "prometheus"})
package factory
