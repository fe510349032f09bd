// Package hablo runs configuration-driven flows whose documents reference
// their own variables with ${dotted.path} placeholders.
//
// A flow document is JSON or YAML with three top-level sections: inputs
// declare typed variables with defaults, nodes declare steps whose outputs
// are variables too, and outputs name what a run returns. Any string value
// that is exactly ${name} becomes a live reference to the variable it names.
//
// # Packages
//
//   - pkg/config: the configuration tree, variable resolver and JSON/YAML
//     sources
//   - pkg/errors: typed structured errors
//   - pkg/logger: zap-based logging
//   - pkg/metrics: Prometheus counters for loading and resolution
//   - pkg/json: goccy/go-json helpers
//   - internal/orchestrator: node type handlers and the flow planner
//   - internal/channel: console and server entry points
//   - cmd/hablo: the command line tool
//
// # Quick Start
//
//	root, err := config.FromFile("hablo.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	root.Resolver().SetVariable("inputs.city", "Oslo")
//	out, _ := root.Dump(config.FormatYAML, false)
//	fmt.Println(out)
//
// From the shell:
//
//	hablo dump -c hablo.yaml --set inputs.city=Oslo
//	hablo run --plan --channel server --address :9000
package hablo
